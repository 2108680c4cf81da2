package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// settingsFile is the YAML shape of an optional project settings file.
// Zero values leave the corresponding config field untouched.
type settingsFile struct {
	APIURL     string `yaml:"api_url"`
	Generation struct {
		Model             string  `yaml:"model"`
		Temperature       float64 `yaml:"temperature"`
		MaxTokens         int     `yaml:"max_tokens"`
		ProblemsPerPrompt int     `yaml:"problems_per_prompt"`
		RecentHints       int     `yaml:"recent_hints"`
	} `yaml:"generation"`
	Templates struct {
		Topics   string `yaml:"topics"`
		Prompts  string `yaml:"prompts"`
		Problems string `yaml:"problems"`
	} `yaml:"templates"`
	Files struct {
		Topics   string `yaml:"topics"`
		Prompts  string `yaml:"prompts"`
		Problems string `yaml:"problems"`
	} `yaml:"files"`
}

func (c *Config) applySettingsFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var s settingsFile
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if s.APIURL != "" {
		c.API.URL = s.APIURL
	}
	if s.Generation.Model != "" {
		c.Generation.Model = s.Generation.Model
	}
	if s.Generation.Temperature != 0 {
		c.Generation.Temperature = s.Generation.Temperature
	}
	if s.Generation.MaxTokens != 0 {
		c.Generation.MaxTokens = s.Generation.MaxTokens
	}
	if s.Generation.ProblemsPerPrompt != 0 {
		c.Generation.ProblemsPerPrompt = s.Generation.ProblemsPerPrompt
	}
	if s.Generation.RecentHints != 0 {
		c.Generation.RecentHints = s.Generation.RecentHints
	}
	if s.Templates.Topics != "" {
		c.Generation.TopicsTemplate = s.Templates.Topics
	}
	if s.Templates.Prompts != "" {
		c.Generation.PromptsTemplate = s.Templates.Prompts
	}
	if s.Templates.Problems != "" {
		c.Generation.ProblemsTemplate = s.Templates.Problems
	}
	if s.Files.Topics != "" {
		c.Files.Topics = s.Files.Topics
	}
	if s.Files.Prompts != "" {
		c.Files.Prompts = s.Files.Prompts
	}
	if s.Files.Problems != "" {
		c.Files.Problems = s.Files.Problems
	}

	return nil
}
