package std

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ilkoid/poncho-chat/pkg/config"
	"github.com/ilkoid/poncho-chat/pkg/tools"
	"github.com/ilkoid/poncho-chat/pkg/utils"
	"github.com/ilkoid/poncho-chat/pkg/webclient"
	"github.com/mmcdole/gofeed"
	"golang.org/x/net/html"
)

// WorldNewsTool — текущие мировые заголовки.
//
// Загружает главную страницу новостного сайта и извлекает текст
// всех <p> элементов.
type WorldNewsTool struct {
	client   *webclient.Client
	url      string
	maxItems int
	maxChars int
}

// NewWorldNewsTool создает инструмент мировых новостей.
func NewWorldNewsTool(c *webclient.Client, cfg config.NewsConfig) *WorldNewsTool {
	cfg = cfg.GetDefaults()
	return &WorldNewsTool{client: c, url: cfg.WorldURL, maxItems: cfg.MaxItems, maxChars: cfg.MaxChars}
}

// Definition возвращает определение инструмента для function calling.
func (t *WorldNewsTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "find_current_news_headlines",
		Description: "Access realtime information about current world events and returns the most recent headings for today",
		Parameters:  tools.ObjectSchema(nil),
	}
}

// Execute выполняет инструмент согласно контракту "Raw In, String Out".
func (t *WorldNewsTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	body, err := t.client.GetBytes(ctx, t.url, nil)
	if err != nil {
		utils.Error("world news fetch failed", "url", t.url, "type", webclient.ClassifyError(err).String(), "error", err)
		return NewsApology, nil
	}

	paragraphs, err := extractParagraphs(body)
	if err != nil || len(paragraphs) == 0 {
		utils.Error("world news parse failed", "url", t.url, "error", err)
		return NewsApology, nil
	}
	if len(paragraphs) > t.maxItems {
		paragraphs = paragraphs[:t.maxItems]
	}
	return utils.Truncate(strings.Join(paragraphs, "\n"), t.maxChars), nil
}

// extractParagraphs возвращает непустой текст каждого <p> элемента документа.
func extractParagraphs(body []byte) ([]string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var out []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "p" {
			var sb strings.Builder
			collectText(n, &sb)
			if text := utils.CollapseWhitespace(sb.String()); text != "" {
				out = append(out, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// NorwegianNewsTool — текущие норвежские новости из RSS ленты.
type NorwegianNewsTool struct {
	client   *webclient.Client
	url      string
	maxItems int
	maxChars int
}

// NewNorwegianNewsTool создает инструмент норвежских новостей.
func NewNorwegianNewsTool(c *webclient.Client, cfg config.NewsConfig) *NorwegianNewsTool {
	cfg = cfg.GetDefaults()
	return &NorwegianNewsTool{client: c, url: cfg.NorwegianRSS, maxItems: cfg.MaxItems, maxChars: cfg.MaxChars}
}

// Definition возвращает определение инструмента для function calling.
func (t *NorwegianNewsTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        "find_current_norwegian_news_headlines",
		Description: "Access realtime information about current events in Norway",
		Parameters:  tools.ObjectSchema(nil),
	}
}

// Execute выполняет инструмент согласно контракту "Raw In, String Out".
//
// Заголовки отдаются на языке оригинала, без перевода.
func (t *NorwegianNewsTool) Execute(ctx context.Context, argsJSON string) (string, error) {
	body, err := t.client.GetBytes(ctx, t.url, nil)
	if err != nil {
		utils.Error("norwegian news fetch failed", "url", t.url, "type", webclient.ClassifyError(err).String(), "error", err)
		return NewsApology, nil
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil || len(feed.Items) == 0 {
		utils.Error("norwegian news parse failed", "url", t.url, "error", err)
		return NewsApology, nil
	}

	var sb strings.Builder
	for i, item := range feed.Items {
		if i >= t.maxItems {
			break
		}
		sb.WriteString("- ")
		sb.WriteString(utils.CollapseWhitespace(item.Title))
		if desc := utils.CollapseWhitespace(item.Description); desc != "" {
			sb.WriteString(": ")
			sb.WriteString(desc)
		}
		sb.WriteByte('\n')
	}
	return utils.Truncate(strings.TrimRight(sb.String(), "\n"), t.maxChars), nil
}
