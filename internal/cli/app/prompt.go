package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
)

// promptEmail asks for an email address. A blank answer is allowed.
func promptEmail(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			input = strings.TrimSpace(input)
			if input != "" && !strings.Contains(input, "@") {
				return errors.New("enter an email address or leave blank")
			}
			return nil
		},
	}

	answer, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
