// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// RegisterInfo describes one register for the register debug tool.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// BitField describes a group of bits inside a register.
type BitField struct {
	Bits        string `json:"bits"` // "7", "4:3"
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// MPU9150RegisterMap returns metadata for the MPU9150 registers the driver
// and the debug tool care about.
func MPU9150RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Self test
		{Address: "0x0D", Name: "SELF_TEST_X", Description: "Self test X (accel/gyro trim)", Access: "RW"},
		{Address: "0x0E", Name: "SELF_TEST_Y", Description: "Self test Y (accel/gyro trim)", Access: "RW"},
		{Address: "0x0F", Name: "SELF_TEST_Z", Description: "Self test Z (accel/gyro trim)", Access: "RW"},
		{Address: "0x10", Name: "SELF_TEST_A", Description: "Self test accel low bits", Access: "RW"},

		// Configuration Registers
		{Address: "0x19", Name: "SMPLRT_DIV", Description: "Sample Rate Divider", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "SMPLRT_DIV", Description: "Sample Rate = Gyro_Output_Rate / (1 + SMPLRT_DIV)", Values: "0-255; gyro output 8kHz with DLPF_CFG 0 or 7, else 1kHz"},
			}},
		{Address: "0x1A", Name: "CONFIG", Description: "Configuration (FSYNC, DLPF)", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5:3", Name: "EXT_SYNC_SET", Description: "External FSYNC pin sampling", Values: "0=Disabled"},
				{Bits: "2:0", Name: "DLPF_CFG", Description: "Digital Low Pass Filter (accel/gyro bandwidth)", Values: "0=260/256Hz, 1=184/188Hz, 2=94/98Hz, 3=44/42Hz, 4=21/20Hz, 5=10/10Hz, 6=5/5Hz, 7=reserved"},
			}},
		{Address: "0x1B", Name: "GYRO_CONFIG", Description: "Gyroscope Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XG_ST", Description: "X Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YG_ST", Description: "Y Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZG_ST", Description: "Z Gyro self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "FS_SEL", Description: "Gyro Full Scale Range", Values: "0=±250°/s, 1=±500°/s, 2=±1000°/s, 3=±2000°/s"},
			}},
		{Address: "0x1C", Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "XA_ST", Description: "X Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "YA_ST", Description: "Y Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "ZA_ST", Description: "Z Accel self-test", Values: "0=Disabled, 1=Enabled"},
				{Bits: "4:3", Name: "AFS_SEL", Description: "Accel Full Scale Range", Values: "0=±2g, 1=±4g, 2=±8g, 3=±16g"},
			}},

		// FIFO and I2C master
		{Address: "0x23", Name: "FIFO_EN", Description: "FIFO Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "TEMP_FIFO_EN", Description: "Temperature to FIFO"},
				{Bits: "6:4", Name: "XG/YG/ZG_FIFO_EN", Description: "Gyro axes to FIFO"},
				{Bits: "3", Name: "ACCEL_FIFO_EN", Description: "Accelerometer to FIFO"},
			}},
		{Address: "0x24", Name: "I2C_MST_CTRL", Description: "I2C Master Control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "MULT_MST_EN", Description: "Multi-master enable", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "WAIT_FOR_ES", Description: "Wait for external sensor", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3:0", Name: "I2C_MST_CLK", Description: "I2C Master clock speed", Values: "0=348kHz ... 13=400kHz ... 15=258kHz"},
			}},
		{Address: "0x25", Name: "I2C_SLV0_ADDR", Description: "I2C Slave 0 Address", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "I2C_SLV0_RW", Description: "Read/Write mode", Values: "0=Write, 1=Read"},
				{Bits: "6:0", Name: "I2C_SLV0_ADDR", Description: "I2C slave address", Values: "7-bit address"},
			}},
		{Address: "0x26", Name: "I2C_SLV0_REG", Description: "I2C Slave 0 Register", Access: "RW", Default: "0x00"},
		{Address: "0x27", Name: "I2C_SLV0_CTRL", Description: "I2C Slave 0 Control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "I2C_SLV0_EN", Description: "Enable reading", Values: "0=Disabled, 1=Enabled"},
				{Bits: "6", Name: "I2C_SLV0_BYTE_SW", Description: "Byte swap"},
				{Bits: "5", Name: "I2C_SLV0_REG_DIS", Description: "Register disable"},
				{Bits: "4", Name: "I2C_SLV0_GRP", Description: "Group registers"},
				{Bits: "3:0", Name: "I2C_SLV0_LEN", Description: "Number of bytes to read", Values: "0-15"},
			}},

		// Interrupt Configuration
		{Address: "0x37", Name: "INT_PIN_CFG", Description: "INT Pin / Bypass Enable Configuration", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "INT_LEVEL", Description: "INT pin active low", Values: "0=Active high, 1=Active low"},
				{Bits: "6", Name: "INT_OPEN", Description: "INT pin open drain", Values: "0=Push-pull, 1=Open drain"},
				{Bits: "5", Name: "LATCH_INT_EN", Description: "Latch INT pin", Values: "0=50us pulse, 1=Latch until cleared"},
				{Bits: "4", Name: "INT_RD_CLEAR", Description: "Clear INT on any read", Values: "0=Status read only, 1=Any read"},
				{Bits: "3", Name: "FSYNC_INT_LEVEL", Description: "FSYNC pin active low", Values: "0=Active high, 1=Active low"},
				{Bits: "2", Name: "FSYNC_INT_EN", Description: "Enable FSYNC as interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "1", Name: "I2C_BYPASS_EN", Description: "Passthrough: AK8975 on the main bus", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x38", Name: "INT_ENABLE", Description: "Interrupt Enable", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_EN", Description: "FIFO overflow interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "3", Name: "I2C_MST_INT_EN", Description: "I2C master interrupt", Values: "0=Disabled, 1=Enabled"},
				{Bits: "0", Name: "DATA_RDY_EN", Description: "Data ready interrupt", Values: "0=Disabled, 1=Enabled"},
			}},
		{Address: "0x3A", Name: "INT_STATUS", Description: "Interrupt Status", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "4", Name: "FIFO_OFLOW_INT", Description: "FIFO overflow interrupt status"},
				{Bits: "3", Name: "I2C_MST_INT", Description: "I2C master interrupt status"},
				{Bits: "0", Name: "DATA_RDY_INT", Description: "Data ready interrupt status"},
			}},

		// Sensor Data Registers (Read-Only)
		{Address: "0x3B", Name: "ACCEL_XOUT_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: "0x3C", Name: "ACCEL_XOUT_L", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: "0x3D", Name: "ACCEL_YOUT_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: "0x3E", Name: "ACCEL_YOUT_L", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: "0x3F", Name: "ACCEL_ZOUT_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Address: "0x40", Name: "ACCEL_ZOUT_L", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: "0x41", Name: "TEMP_OUT_H", Description: "Temperature High Byte (°C = raw/340 + 35)", Access: "R"},
		{Address: "0x42", Name: "TEMP_OUT_L", Description: "Temperature Low Byte", Access: "R"},
		{Address: "0x43", Name: "GYRO_XOUT_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: "0x44", Name: "GYRO_XOUT_L", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: "0x45", Name: "GYRO_YOUT_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: "0x46", Name: "GYRO_YOUT_L", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: "0x47", Name: "GYRO_ZOUT_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Address: "0x48", Name: "GYRO_ZOUT_L", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},

		// External Sensor Data (I2C master mode only)
		{Address: "0x49", Name: "EXT_SENS_DATA_00", Description: "External Sensor Data 00", Access: "R"},
		{Address: "0x4A", Name: "EXT_SENS_DATA_01", Description: "External Sensor Data 01", Access: "R"},
		{Address: "0x4B", Name: "EXT_SENS_DATA_02", Description: "External Sensor Data 02", Access: "R"},
		{Address: "0x4C", Name: "EXT_SENS_DATA_03", Description: "External Sensor Data 03", Access: "R"},
		{Address: "0x4D", Name: "EXT_SENS_DATA_04", Description: "External Sensor Data 04", Access: "R"},
		{Address: "0x4E", Name: "EXT_SENS_DATA_05", Description: "External Sensor Data 05", Access: "R"},
		{Address: "0x4F", Name: "EXT_SENS_DATA_06", Description: "External Sensor Data 06", Access: "R"},

		{Address: "0x6A", Name: "USER_CTRL", Description: "User Control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "FIFO_EN", Description: "Enable FIFO", Values: "0=Disabled, 1=Enabled"},
				{Bits: "5", Name: "I2C_MST_EN", Description: "Enable I2C Master (must be 0 for passthrough)", Values: "0=Disabled, 1=Enabled"},
				{Bits: "2", Name: "FIFO_RESET", Description: "Reset FIFO", Values: "1=Reset"},
				{Bits: "1", Name: "I2C_MST_RESET", Description: "Reset I2C Master", Values: "1=Reset"},
				{Bits: "0", Name: "SIG_COND_RESET", Description: "Reset signal paths", Values: "1=Reset"},
			}},
		{Address: "0x6B", Name: "PWR_MGMT_1", Description: "Power Management 1", Access: "RW", Default: "0x40",
			BitFields: []BitField{
				{Bits: "7", Name: "DEVICE_RESET", Description: "Device reset", Values: "1=Reset device"},
				{Bits: "6", Name: "SLEEP", Description: "Sleep mode", Values: "0=Awake, 1=Sleep"},
				{Bits: "5", Name: "CYCLE", Description: "Cycle mode", Values: "0=Disabled, 1=Cycle"},
				{Bits: "3", Name: "TEMP_DIS", Description: "Temperature sensor", Values: "0=Enabled, 1=Disabled"},
				{Bits: "2:0", Name: "CLKSEL", Description: "Clock source", Values: "0=Internal 8MHz, 1=PLL X gyro, 2=PLL Y gyro, 3=PLL Z gyro, 7=Stopped"},
			}},
		{Address: "0x6C", Name: "PWR_MGMT_2", Description: "Power Management 2", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:6", Name: "LP_WAKE_CTRL", Description: "Wake-up frequency in accel-only low power mode", Values: "0=1.25Hz, 1=5Hz, 2=20Hz, 3=40Hz"},
				{Bits: "5", Name: "STBY_XA", Description: "Standby X accelerometer"},
				{Bits: "4", Name: "STBY_YA", Description: "Standby Y accelerometer"},
				{Bits: "3", Name: "STBY_ZA", Description: "Standby Z accelerometer"},
				{Bits: "2", Name: "STBY_XG", Description: "Standby X gyro"},
				{Bits: "1", Name: "STBY_YG", Description: "Standby Y gyro"},
				{Bits: "0", Name: "STBY_ZG", Description: "Standby Z gyro"},
			}},
		{Address: "0x72", Name: "FIFO_COUNTH", Description: "FIFO Count High Byte", Access: "R"},
		{Address: "0x73", Name: "FIFO_COUNTL", Description: "FIFO Count Low Byte", Access: "R"},
		{Address: "0x74", Name: "FIFO_R_W", Description: "FIFO Read Write", Access: "RW"},

		// Device Identification
		{Address: "0x75", Name: "WHO_AM_I", Description: "Device ID (should be 0x68)", Access: "R", Default: "0x68"},
	}
}

// AK8975RegisterMap returns metadata for the AK8975 magnetometer registers.
// They are reachable at 0x0C only while passthrough (I2C_BYPASS_EN) is on.
func AK8975RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		{Address: "0x00", Name: "WIA", Description: "Device ID (should be 0x48)", Access: "R", Default: "0x48"},
		{Address: "0x01", Name: "INFO", Description: "Device information", Access: "R"},
		{Address: "0x02", Name: "ST1", Description: "Status 1", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "0", Name: "DRDY", Description: "Data Ready", Values: "0=Not ready, 1=Data ready"},
			}},
		{Address: "0x03", Name: "HXL", Description: "X-axis data low byte", Access: "R"},
		{Address: "0x04", Name: "HXH", Description: "X-axis data high byte", Access: "R"},
		{Address: "0x05", Name: "HYL", Description: "Y-axis data low byte", Access: "R"},
		{Address: "0x06", Name: "HYH", Description: "Y-axis data high byte", Access: "R"},
		{Address: "0x07", Name: "HZL", Description: "Z-axis data low byte", Access: "R"},
		{Address: "0x08", Name: "HZH", Description: "Z-axis data high byte", Access: "R"},
		{Address: "0x09", Name: "ST2", Description: "Status 2", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "3", Name: "HOFL", Description: "Magnetic sensor overflow", Values: "0=Normal, 1=Overflow"},
				{Bits: "2", Name: "DERR", Description: "Data read error", Values: "0=Normal, 1=Error"},
			}},
		{Address: "0x0A", Name: "CNTL", Description: "Control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "3:0", Name: "MODE", Description: "Operation Mode", Values: "0=Power-down, 1=Single measurement, 8=Self-test, 15=Fuse ROM access"},
			}},
		{Address: "0x0C", Name: "ASTC", Description: "Self-test control", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "6", Name: "SELF", Description: "Generate magnetic field for self-test", Values: "0=Normal, 1=Self-test"},
			}},
		{Address: "0x0F", Name: "I2CDIS", Description: "I2C disable", Access: "RW", Default: "0x00"},
		{Address: "0x10", Name: "ASAX", Description: "X sensitivity adjustment (fuse ROM)", Access: "R",
			BitFields: []BitField{
				{Bits: "7:0", Name: "ASAX", Description: "Factory adjustment", Values: "Applied as (ASA-128)*0.5/128 + 1"},
			}},
		{Address: "0x11", Name: "ASAY", Description: "Y sensitivity adjustment (fuse ROM)", Access: "R"},
		{Address: "0x12", Name: "ASAZ", Description: "Z sensitivity adjustment (fuse ROM)", Access: "R"},
	}
}
