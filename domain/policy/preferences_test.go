package policy_test

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/orchestra-go/domain/capability"
	"github.com/felixgeelhaar/orchestra-go/domain/policy"
)

func TestPreferences_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		prefs   policy.Preferences
		wantErr error
	}{
		{"defaults", policy.DefaultPreferences(), nil},
		{"budget too low", policy.Preferences{Budget: -0.1, Quality: 0.5}, policy.ErrBudgetOutOfRange},
		{"budget too high", policy.Preferences{Budget: 1.1, Quality: 0.5}, policy.ErrBudgetOutOfRange},
		{"quality too high", policy.Preferences{Budget: 0.5, Quality: 2}, policy.ErrQualityOutOfRange},
		{"bounds are inclusive", policy.Preferences{Budget: 1, Quality: 0}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.prefs.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPreferences_PrivacyFiltering(t *testing.T) {
	t.Parallel()

	descriptors := []capability.Descriptor{
		{Name: "sandbox", Local: true},
		{Name: "web_search", Local: false},
		{Name: "local_search", Local: true},
		{Name: "gemini", Local: false},
	}

	private := policy.Preferences{Budget: 0.5, Privacy: true, Quality: 0.5}
	eligible := private.Eligible(descriptors)
	if len(eligible) != 2 {
		t.Fatalf("Eligible() returned %d descriptors, want 2", len(eligible))
	}
	if eligible[0].Name != "sandbox" || eligible[1].Name != "local_search" {
		t.Errorf("Eligible() = %v, order not preserved", eligible)
	}

	open := policy.DefaultPreferences()
	if got := open.Eligible(descriptors); len(got) != 4 {
		t.Errorf("open preferences filtered to %d, want 4", len(got))
	}
}

func TestPreferences_Allows(t *testing.T) {
	t.Parallel()

	private := policy.Preferences{Privacy: true}
	if private.Allows(capability.Descriptor{Name: "web_search"}) {
		t.Error("privacy mode should block non-local capability")
	}
	if !private.Allows(capability.Descriptor{Name: "sandbox", Local: true}) {
		t.Error("privacy mode should allow local capability")
	}
}
