package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 5},
		{"default bucket size for negative", -1, 5},
		{"custom bucket size", 10, 10},
		{"small bucket size", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(50, "icons") {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset() // should not panic
}

func TestProgressSamplerStageChange(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(0, "icons") {
		t.Error("first stage should log")
	}
	if s.ShouldLog(0, "icons") {
		t.Error("same stage and percent should not log again")
	}
	if !s.ShouldLog(0, "banners") {
		t.Error("different stage should log")
	}
	if s.lastStage != "banners" {
		t.Errorf("lastStage = %q, want banners", s.lastStage)
	}
}

func TestProgressSamplerPercentBuckets(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(0, "icons") {
		t.Error("0%% should log")
	}
	if s.ShouldLog(3, "icons") {
		t.Error("3%% is inside the first bucket and should not log")
	}
	if !s.ShouldLog(5, "icons") {
		t.Error("5%% crosses into the next bucket and should log")
	}
	if !s.ShouldLog(23, "icons") {
		t.Error("jumping several buckets should log")
	}
	if s.ShouldLog(24, "icons") {
		t.Error("24%% stays in the same bucket and should not log")
	}
	if !s.ShouldLog(100, "icons") {
		t.Error("100%% should log")
	}
	if s.ShouldLog(100, "icons") {
		t.Error("repeated 100%% should not log")
	}
}

func TestProgressSamplerUnknownPercent(t *testing.T) {
	s := NewProgressSampler(5)

	if !s.ShouldLog(-1, "icons") {
		t.Error("stage change with unknown percent should log")
	}
	if s.ShouldLog(-1, "icons") {
		t.Error("repeated unknown percent should not log")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, "icons")
	s.Reset()

	if s.lastStage != "" || s.lastBucket != -1 {
		t.Errorf("Reset left state %q/%d", s.lastStage, s.lastBucket)
	}
	if !s.ShouldLog(50, "icons") {
		t.Error("first event after reset should log")
	}
}
