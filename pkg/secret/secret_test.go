package secret_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/platewise/platewise/pkg/secret"
)

func TestDefaultRenderingsAreRedacted(t *testing.T) {
	s := secret.New("4242424242424242")

	for name, rendered := range map[string]string{
		"Sprint %v":  fmt.Sprintf("%v", s),
		"Sprint %s":  fmt.Sprintf("%s", s),
		"Sprint %#v": fmt.Sprintf("%#v", s),
		"Sprint %+v": fmt.Sprintf("%+v", s),
	} {
		if strings.Contains(rendered, "4242") {
			t.Errorf("%s leaked the value: %q", name, rendered)
		}
		if !strings.Contains(rendered, secret.Redacted) {
			t.Errorf("%s should contain the redaction marker: %q", name, rendered)
		}
	}
}

func TestRevealReturnsRawValue(t *testing.T) {
	s := secret.New("123")
	if s.Reveal() != "123" {
		t.Errorf("Reveal = %q", s.Reveal())
	}
}

func TestJSONAndYAMLRedacted(t *testing.T) {
	s := secret.New("378282246310005")

	j, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if strings.Contains(string(j), "3782") {
		t.Errorf("json leaked: %s", j)
	}

	y, err := yaml.Marshal(s)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	if strings.Contains(string(y), "3782") {
		t.Errorf("yaml leaked: %s", y)
	}
}

func TestIsZero(t *testing.T) {
	if !secret.New("").IsZero() {
		t.Error("empty secret should be zero")
	}
	if secret.New("x").IsZero() {
		t.Error("non-empty secret should not be zero")
	}
}
