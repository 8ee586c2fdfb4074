package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/jarbuilder/internal/config"
)

// downloadPolicy is the policy dependency downloads get from a descriptor
// without a retry section.
func downloadPolicy(t *testing.T) Policy {
	t.Helper()
	cfg := &config.Config{Project: config.Project{Group: "g", Name: "n", Version: "1"}}
	require.NoError(t, config.ApplyDefaults(cfg))
	return FromConfig(cfg.Retry)
}

func TestDownloadPolicyDefaults(t *testing.T) {
	p := downloadPolicy(t)

	assert.Equal(t, config.RetryBackoffExponential, p.Mode)
	assert.Equal(t, time.Second, p.Initial)
	assert.Equal(t, 30*time.Second, p.Max)
	assert.Equal(t, 2, p.MaxRetries)
	require.NoError(t, p.Validate())

	// Two retries after the first attempt wait 1s then 2s.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second},
		[]time.Duration{p.Delay(1), p.Delay(2)})
}

func TestDelay(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		want   []time.Duration // delays for retries 1..n
	}{
		{
			name:   "exponential grows to the cap",
			policy: NewPolicy(config.RetryBackoffExponential, time.Second, 5*time.Second, 5),
			want:   []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 5 * time.Second, 5 * time.Second},
		},
		{
			name:   "linear grows to the cap",
			policy: NewPolicy(config.RetryBackoffLinear, 500*time.Millisecond, 1200*time.Millisecond, 4),
			want:   []time.Duration{500 * time.Millisecond, time.Second, 1200 * time.Millisecond, 1200 * time.Millisecond},
		},
		{
			name:   "fixed",
			policy: NewPolicy(config.RetryBackoffFixed, 250*time.Millisecond, time.Second, 3),
			want:   []time.Duration{250 * time.Millisecond, 250 * time.Millisecond, 250 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]time.Duration, len(tt.want))
			for i := range got {
				got[i] = tt.policy.Delay(i + 1)
			}
			assert.Equal(t, tt.want, got)
			assert.Zero(t, tt.policy.Delay(0))
			assert.Zero(t, tt.policy.Delay(-1))
		})
	}
}

func TestNewPolicy_ClampsInitialToMax(t *testing.T) {
	p := NewPolicy(config.RetryBackoffExponential, 45*time.Second, 30*time.Second, 1)
	assert.Equal(t, 30*time.Second, p.Initial)
	assert.Equal(t, 30*time.Second, p.Delay(1))
}

func TestNewPolicy_UnknownModeKeepsDefault(t *testing.T) {
	p := NewPolicy("jittered", time.Second, 2*time.Second, 1)
	assert.Equal(t, DefaultPolicy().Mode, p.Mode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"zero initial", Policy{Initial: 0, Max: time.Second, MaxRetries: 1}, true},
		{"zero max", Policy{Initial: time.Second, Max: 0, MaxRetries: 1}, true},
		{"negative retries", Policy{Initial: time.Second, Max: time.Second, MaxRetries: -1}, true},
		{"no retries", Policy{Initial: time.Second, Max: time.Second}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
