// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/orientation"
)

type fakePublisher struct {
	msgs   map[string][]byte
	order  []string
	failOn string
}

func (p *fakePublisher) Publish(topic string, payload []byte) error {
	if topic == p.failOn {
		return errors.New("broker gone")
	}
	if p.msgs == nil {
		p.msgs = map[string][]byte{}
	}
	p.msgs[topic] = payload
	p.order = append(p.order, topic)
	return nil
}

func TestPublishSample(t *testing.T) {
	cfg := config.Default()
	raw := &imu.Raw{Source: "imu", Ax: 2048, Faults: "bus"}
	sc := imu.Scaled{Source: "imu", Accel: [3]float64{0, 0, 1}, Mag: [3]float64{0, 30, 40}}

	p := &fakePublisher{}
	pose, err := publishSample(p, cfg, raw, sc)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{cfg.TopicIMURaw, cfg.TopicIMUScaled, cfg.TopicPose}
	if strings.Join(p.order, ",") != strings.Join(want, ",") {
		t.Errorf("published %v, want %v", p.order, want)
	}
	var gotRaw imu.Raw
	if err := json.Unmarshal(p.msgs[cfg.TopicIMURaw], &gotRaw); err != nil || gotRaw.Ax != 2048 || gotRaw.Faults != "bus" {
		t.Errorf("raw payload = %s (%v)", p.msgs[cfg.TopicIMURaw], err)
	}
	var gotPose orientation.Pose
	if err := json.Unmarshal(p.msgs[cfg.TopicPose], &gotPose); err != nil || gotPose != pose {
		t.Errorf("pose payload = %s, want %+v", p.msgs[cfg.TopicPose], pose)
	}

	// Mock samples carry no raw buffers.
	p = &fakePublisher{}
	if _, err := publishSample(p, cfg, nil, sc); err != nil || len(p.order) != 2 {
		t.Errorf("without raw: %v, %v", p.order, err)
	}

	p = &fakePublisher{failOn: cfg.TopicIMUScaled}
	if _, err := publishSample(p, cfg, raw, sc); err == nil || !strings.Contains(err.Error(), cfg.TopicIMUScaled) {
		t.Errorf("publish failure = %v", err)
	}
	if _, ok := p.msgs[cfg.TopicPose]; ok {
		t.Error("pose published after a failed publish")
	}
}

func TestSourceSampler(t *testing.T) {
	src, b := newTestSource(t)
	b.mu.Lock()
	b.regs[0x68][0x3B], b.regs[0x68][0x3C] = 0x08, 0x00 // 2048 = 1g at ±16g
	b.regs[0x68][0x41], b.regs[0x68][0x42] = 0x01, 0x54 // 340
	b.mu.Unlock()
	src.Dev().AccelIRQ()

	raw, sc, err := sourceSampler(src)(time.Unix(5, 0))
	if err != nil {
		t.Fatal(err)
	}
	if raw == nil || raw.Ax != 2048 || !raw.Time.Equal(time.Unix(5, 0)) {
		t.Errorf("raw = %+v", raw)
	}
	if sc.Accel[0] != 1 || sc.TempC != 36 {
		t.Errorf("scaled = %+v", sc)
	}
}

func TestFormatters(t *testing.T) {
	if got := formatPose(orientation.Pose{Roll: 1, Pitch: -2.5, Yaw: 359.99}); got != "[POSE]  ROLL=  1.00  PITCH= -2.50  YAW=359.99" {
		t.Errorf("formatPose = %q", got)
	}
	raw := formatRaw(imu.Raw{Ax: -1, Mz: 300, Faults: "mag-overflow"})
	if !strings.Contains(raw, "ax=    -1") || !strings.Contains(raw, "mz=   300") || !strings.HasSuffix(raw, "faults=mag-overflow") {
		t.Errorf("formatRaw = %q", raw)
	}
	if s := formatScaled(imu.Scaled{GyroUnit: "rad", TempC: 21.5}); !strings.Contains(s, "rad/s") || !strings.Contains(s, " 21.5C") {
		t.Errorf("formatScaled = %q", s)
	}
	if got := formatVec([]float64{1, -0.5}); got != "[1.000, -0.500]" {
		t.Errorf("formatVec = %q", got)
	}
}

func TestWebHandlers(t *testing.T) {
	data := &latestData{}
	srv := httptest.NewServer(newWebMux(data, t.TempDir()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/orientation")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("before data: status %d", resp.StatusCode)
	}

	data.setPose(orientation.Pose{Roll: 10, Yaw: 90})
	data.setScaled(imu.Scaled{Source: "imu", TempC: 30})

	resp, err = http.Get(srv.URL + "/api/orientation")
	if err != nil {
		t.Fatal(err)
	}
	var p orientation.Pose
	err = json.NewDecoder(resp.Body).Decode(&p)
	resp.Body.Close()
	if err != nil || p.Roll != 10 || p.Yaw != 90 {
		t.Errorf("pose = %+v, %v", p, err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	resp, err = http.Get(srv.URL + "/api/imu")
	if err != nil {
		t.Fatal(err)
	}
	var sc imu.Scaled
	err = json.NewDecoder(resp.Body).Decode(&sc)
	resp.Body.Close()
	if err != nil || sc.TempC != 30 {
		t.Errorf("scaled = %+v, %v", sc, err)
	}
}

func TestDisplayLines(t *testing.T) {
	d := &DisplayData{}
	if l := d.lines("orientation"); l[2] != "Waiting..." {
		t.Errorf("empty orientation = %q", l)
	}
	d.setPose(orientation.Pose{Roll: 1.5, Pitch: -3, Yaw: 180})
	if l := d.lines("orientation"); l[0] != "R:    1.5" || l[1] != "P:   -3.0" || l[2] != "Y:  180.0" {
		t.Errorf("orientation = %q", l)
	}
	d.setRaw(imu.Raw{Ax: 1, Gy: -2, Mz: 3})
	if l := d.lines("imu_raw"); l[0] != "A     1     0     0" || l[2] != "M     0     0     3" {
		t.Errorf("imu_raw = %q", l)
	}
	d.setScaled(imu.Scaled{TempC: 24})
	if l := d.lines("imu_scaled"); l[3] != "T 24.0C" {
		t.Errorf("imu_scaled = %q", l)
	}
	if l := d.lines("gps"); l[0] != "unknown" {
		t.Errorf("unknown content = %q", l)
	}
}

func TestRenderLines(t *testing.T) {
	blank := renderLines(nil)
	for _, p := range blank.Pix {
		if p != 0 {
			t.Fatal("blank frame has lit pixels")
		}
	}
	if b := blank.Bounds(); b.Dx() != 128 || b.Dy() != 64 {
		t.Errorf("bounds = %v", b)
	}

	img := renderLines(splashLines)
	var on int
	for _, p := range img.Pix {
		if p != 0 {
			on++
		}
	}
	if on == 0 {
		t.Error("splash drew nothing")
	}
}

func TestPrintPoses(t *testing.T) {
	ticks := make(chan time.Time, 3)
	for i := 0; i < 3; i++ {
		ticks <- time.Time{}
	}
	var buf bytes.Buffer
	if err := printPoses(&buf, orientation.NewIMUSource(orientation.NewMockReader()), ticks, 2); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "ROLL="); n != 2 {
		t.Errorf("printed %d poses:\n%s", n, buf.String())
	}
	if len(ticks) != 1 {
		t.Errorf("consumed %d ticks, want 2", 3-len(ticks))
	}
}

func TestCompareIRQAndMagTiming(t *testing.T) {
	src, _ := newTestSource(t)
	var buf bytes.Buffer
	if err := CompareIRQ(&buf, src.Dev(), 2, time.Millisecond, 5*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Count(out, "Interrupt: ") != 2 || strings.Count(out, "Normal:    ") != 2 {
		t.Errorf("output:\n%s", out)
	}

	times, err := MagTiming(src.Dev(), time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	for i, d := range times {
		if d < 0 {
			t.Errorf("phase %d took %s", i, d)
		}
	}
}

func TestMagTest(t *testing.T) {
	src, b := newTestSource(t)
	var buf bytes.Buffer
	if err := MagTest(&buf, src.Dev(), 20*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Correction factors: x = 1.000 y = 1.000 z = 1.000") {
		t.Errorf("output:\n%s", buf.String())
	}

	b.mu.Lock()
	b.regs[0x0C][0x02] = 0 // never ready
	b.mu.Unlock()
	if err := MagTest(&buf, src.Dev(), 5*time.Millisecond); err == nil {
		t.Error("MagTest without data ready succeeded")
	}
}
