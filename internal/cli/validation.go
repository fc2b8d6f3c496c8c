package cli

import (
	"fmt"
	"strings"
)

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\ \t") {
		return fmt.Errorf("invalid name: %q", name)
	}
	return nil
}
