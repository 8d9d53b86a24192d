package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// PromptProvider is what the handlers need from the prompt manager
type PromptProvider interface {
	BuildPrompt(mode, variant string, data interface{}) (string, error)
	GetTemplates() map[string]map[string]*template.Template
}

type PromptManager struct {
	templates map[string]map[string]*template.Template // mode -> variant -> template
}

// loaded prompt template file
type PromptTemplate struct {
	BasePrompt string            `yaml:"base_prompt"`
	Variants   map[string]string `yaml:"variants"`
}

// creates a new prompt manager and loads templates
func NewPromptManager() (*PromptManager, error) {
	pm := &PromptManager{
		templates: make(map[string]map[string]*template.Template),
	}

	if err := pm.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}

	return pm, nil
}

// builds a prompt for the given mode and variant
func (pm *PromptManager) BuildPrompt(mode, variant string, data interface{}) (string, error) {
	modeTemplates, exists := pm.templates[mode]
	if !exists {
		return "", fmt.Errorf("template not found for mode: %s", mode)
	}

	tmpl, exists := modeTemplates[variant]
	if !exists {
		return "", fmt.Errorf("variant '%s' not found for mode '%s'", variant, mode)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s/%s: %w", mode, variant, err)
	}
	return buf.String(), nil
}

func (pm *PromptManager) GetTemplates() map[string]map[string]*template.Template {
	return pm.templates
}

// loadPrompts loads all YAML prompt files from the embedded filesystem
func (pm *PromptManager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		if err := pm.addTemplateFile(strings.TrimSuffix(entry.Name(), ".yaml"), data); err != nil {
			return err
		}
	}

	return nil
}

func (pm *PromptManager) addTemplateFile(name string, data []byte) error {
	var promptTemplate PromptTemplate
	if err := yaml.Unmarshal(data, &promptTemplate); err != nil {
		return fmt.Errorf("failed to parse template file %s: %w", name, err)
	}
	if len(promptTemplate.Variants) == 0 {
		return fmt.Errorf("template file %s defines no variants", name)
	}

	pm.templates[name] = make(map[string]*template.Template)
	for variant, body := range promptTemplate.Variants {
		var full strings.Builder
		if promptTemplate.BasePrompt != "" {
			full.WriteString(promptTemplate.BasePrompt)
			full.WriteString("\n")
		}
		full.WriteString(body)

		// missingkey=error so a typo in a field name fails loudly
		tmpl, err := template.New(name + "/" + variant).Option("missingkey=error").Parse(full.String())
		if err != nil {
			return fmt.Errorf("failed to compile %s/%s: %w", name, variant, err)
		}
		pm.templates[name][variant] = tmpl
	}
	return nil
}
