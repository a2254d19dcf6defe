// Загрузка и рендер промптов: YAML файл и text/template.

package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

// Load читает YAML файл промпта.
func Load(path string) (*PromptFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("prompt file not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var pf PromptFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("yaml parse error: %w", err)
	}
	return &pf, nil
}

// RenderMessages подставляет data во все сообщения файла.
// Роли сохраняются, Content рендерится как text/template.
func (pf *PromptFile) RenderMessages(data interface{}) ([]Message, error) {
	rendered := make([]Message, 0, len(pf.Messages))
	for i, msg := range pf.Messages {
		content, err := execute(fmt.Sprintf("message #%d (%s)", i, msg.Role), msg.Content, data)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, Message{Role: msg.Role, Content: content})
	}
	return rendered, nil
}

// Render подставляет data в один шаблон.
func Render(content string, data interface{}) (string, error) {
	return execute("prompt", content, data)
}

func execute(name, content string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(content)
	if err != nil {
		return "", fmt.Errorf("template parse error in %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("template execute error in %s: %w", name, err)
	}
	return buf.String(), nil
}
