package review

import (
	"errors"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// promptProfile is an optional operator-provided TOML file overriding the
// built-in agent instructions, e.g.:
//
//	[review]
//	instructions = """You are a reviewer for {language}... {schema}"""
type promptProfile struct {
	Review promptReviewConfig `toml:"review"`
}

type promptReviewConfig struct {
	Instructions string `toml:"instructions"`
}

func loadPromptProfile(path string) (promptProfile, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		return promptProfile{}, errors.New("prompt profile path is required")
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return promptProfile{}, err
	}

	var profile promptProfile
	if err := toml.Unmarshal(raw, &profile); err != nil {
		return promptProfile{}, err
	}

	if override := profile.Review.Instructions; override != "" {
		if !strings.Contains(override, "{language}") {
			return promptProfile{}, errors.New("prompt profile instructions must contain the {language} placeholder")
		}
	}
	return profile, nil
}
