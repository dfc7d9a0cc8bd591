package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/DonxYu/Workflow/application/ports/inbound"
	"github.com/DonxYu/Workflow/application/ports/outbound"
	"github.com/DonxYu/Workflow/domain"
)

type storyboardDecomposer struct {
	logger       outbound.LoggerPort
	generator    outbound.StoryboardGeneratorPort
	sceneSeconds int
}

func NewStoryboardDecomposer(logger outbound.LoggerPort, generator outbound.StoryboardGeneratorPort,
	sceneSeconds int) inbound.StoryboardDecomposerPort {
	return &storyboardDecomposer{
		logger:       logger,
		generator:    generator,
		sceneSeconds: sceneSeconds,
	}
}

// Decompose asks the generative collaborator for sceneCount scenes and
// validates its reply. A transport failure is returned to the caller; a
// missing or malformed payload is logged and yields an empty sequence.
func (d *storyboardDecomposer) Decompose(ctx context.Context, content string, sceneCount int) ([]domain.Scene, error) {
	raw, err := d.generator.Generate(ctx, d.buildPrompt(content, sceneCount))
	if err != nil {
		return nil, err
	}

	scenes := d.parseStoryboard(raw)
	if len(scenes) > sceneCount {
		scenes = scenes[:sceneCount]
	}
	d.logger.InfoWithFields("storyboard decomposed", map[string]interface{}{
		"requested": sceneCount,
		"returned":  len(scenes),
	})
	return scenes, nil
}

type storyboardPayload struct {
	Scenes []scenePayload `json:"scenes"`
}

type scenePayload struct {
	SceneID          string   `json:"scene_id"`
	SceneTitle       string   `json:"scene_title"`
	SceneDescription string   `json:"scene_description"`
	Duration         int      `json:"duration"`
	VisualElements   []string `json:"visual_elements"`
	TextOverlay      string   `json:"text_overlay"`
	BackgroundMusic  string   `json:"background_music"`
	TransitionEffect string   `json:"transition_effect"`
}

// parseStoryboard extracts and validates the structured payload from a
// possibly prose-wrapped response. Entries with missing fields are filled
// with defaults rather than discarded.
func (d *storyboardDecomposer) parseStoryboard(response string) []domain.Scene {
	payload, ok := extractJSONObject(response)
	if !ok {
		d.logger.Warn("no structured payload found in storyboard response")
		return nil
	}

	var parsed storyboardPayload
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		d.logger.Error(err, "failed to parse storyboard payload")
		return nil
	}

	scenes := make([]domain.Scene, 0, len(parsed.Scenes))
	for i, entry := range parsed.Scenes {
		scene := domain.Scene{
			ID:               entry.SceneID,
			Title:            entry.SceneTitle,
			Description:      entry.SceneDescription,
			DurationSeconds:  entry.Duration,
			VisualElements:   entry.VisualElements,
			TextOverlay:      entry.TextOverlay,
			BackgroundMusic:  entry.BackgroundMusic,
			TransitionEffect: entry.TransitionEffect,
		}
		if scene.ID == "" {
			scene.ID = fmt.Sprintf("scene_%d", i+1)
		}
		if scene.DurationSeconds <= 0 {
			scene.DurationSeconds = d.sceneSeconds
		}
		if scene.VisualElements == nil {
			scene.VisualElements = []string{}
		}
		scenes = append(scenes, scene)
	}
	return scenes
}

// extractJSONObject locates the first balanced top-level object inside text.
// Generative collaborators are not contract-bound to return clean output, so
// this is a documented best-effort heuristic.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func (d *storyboardDecomposer) buildPrompt(content string, sceneCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a video director. Break the note below into exactly %d storyboard scenes of about %d seconds each.\n\n", sceneCount, d.sceneSeconds)
	fmt.Fprintf(&b, "Note content:\n%s\n\n", content)
	b.WriteString("Respond with JSON only, matching this schema exactly:\n")
	b.WriteString("```json\n{\n  \"scenes\": [\n    {\n")
	b.WriteString("      \"scene_id\": \"scene_1\",\n")
	b.WriteString("      \"scene_title\": \"short title\",\n")
	b.WriteString("      \"scene_description\": \"what the viewer sees\",\n")
	fmt.Fprintf(&b, "      \"duration\": %d,\n", d.sceneSeconds)
	b.WriteString("      \"visual_elements\": [\"element\"],\n")
	b.WriteString("      \"text_overlay\": \"on-screen text\",\n")
	b.WriteString("      \"background_music\": \"music style\",\n")
	b.WriteString("      \"transition_effect\": \"transition\"\n")
	b.WriteString("    }\n  ]\n}\n```\n")
	fmt.Fprintf(&b, "Every scene must last %d seconds and scenes must follow the note's narrative order.", d.sceneSeconds)
	return b.String()
}
