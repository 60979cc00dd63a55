package categorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/shopsmart/shopsmart/plugin/ai"
)

// LLMClassifier asks an LLM for the department of an item name. It is the
// slow path behind the product cache and is treated as unreliable.
type LLMClassifier struct {
	llm ai.LLMService

	// sem limits concurrent LLM requests so a burst of item entries cannot
	// exhaust the provider's rate limit.
	sem *semaphore.Weighted
}

// NewLLMClassifier creates a new LLM classifier.
func NewLLMClassifier(llm ai.LLMService) *LLMClassifier {
	return &LLMClassifier{
		llm: llm,
		sem: semaphore.NewWeighted(4),
	}
}

// classificationPrompt is the prompt template for item categorization.
const classificationPrompt = `You are a grocery assistant.
Categorize the item %q (Language: %s) into exactly one of the following Group IDs:
%s

Respond with JSON only, in the form {"groupId": "<one of the ids above>"}.
If unsure, use %q.`

// Classify classifies an item name using the LLM.
func (c *LLMClassifier) Classify(ctx context.Context, name string, language string) (GroupID, error) {
	if c.llm == nil {
		return GroupOther, errors.New("LLM client not configured")
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return GroupOther, errors.Wrap(err, "waiting for LLM slot")
	}
	defer c.sem.Release(1)

	ids := make([]string, 0, len(AllGroupIDs()))
	for _, id := range AllGroupIDs() {
		ids = append(ids, "- "+string(id))
	}
	prompt := fmt.Sprintf(classificationPrompt, name, language, strings.Join(ids, "\n"), string(GroupOther))

	response, err := c.llm.Chat(ctx, []ai.Message{ai.UserMessage(prompt)})
	if err != nil {
		return GroupOther, errors.Wrap(err, "LLM categorization failed")
	}

	groupID, err := parseResponse(response)
	if err != nil {
		return GroupOther, errors.Wrap(err, "failed to parse LLM response")
	}
	return groupID, nil
}

// llmResponse is the expected JSON structure from the LLM.
type llmResponse struct {
	GroupID string `json:"groupId"`
}

// parseResponse parses the LLM JSON response. A valid payload carrying an
// id outside the enumeration degrades to GroupOther rather than erroring.
func parseResponse(response string) (GroupID, error) {
	response = stripMarkdownFences(response)

	var resp llmResponse
	if err := json.Unmarshal([]byte(response), &resp); err != nil {
		return GroupOther, err
	}

	groupID := GroupID(strings.ToLower(strings.TrimSpace(resp.GroupID)))
	if !groupID.IsValid() {
		return GroupOther, nil
	}
	return groupID, nil
}

// stripMarkdownFences extracts the payload when the model wraps its JSON in
// a ``` block.
func stripMarkdownFences(response string) string {
	response = strings.TrimSpace(response)
	if !strings.HasPrefix(response, "```") {
		return response
	}

	lines := strings.Split(response, "\n")
	var jsonLines []string
	inJSON := false
	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inJSON = !inJSON
			continue
		}
		if inJSON {
			jsonLines = append(jsonLines, line)
		}
	}
	return strings.Join(jsonLines, "\n")
}
