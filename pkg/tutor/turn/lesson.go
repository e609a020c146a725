package turn

import "strings"

// lessonShape is one recognized layout of lesson_content
type lessonShape struct {
	name    string
	matches func(any) bool
	blocks  func(any) []LessonBlock
}

// lessonShapes is tried in order; the first structural match wins.
var lessonShapes = []lessonShape{
	{name: "titled_list", matches: isTitledList, blocks: titledListBlocks},
	{name: "typed_list", matches: isTypedList, blocks: typedListBlocks},
	{name: "titled_items", matches: isTitledItems, blocks: titledItemsBlocks},
	{name: "topic_items", matches: isTopicItems, blocks: topicItemsBlocks},
	{name: "single", matches: isSingle, blocks: singleBlock},
}

// resolveLesson flattens lesson_content into blocks. Unknown layouts yield nil.
func resolveLesson(raw any) []LessonBlock {
	for _, shape := range lessonShapes {
		if shape.matches(raw) {
			return shape.blocks(raw)
		}
	}
	return nil
}

// LessonShapeName reports which layout lesson_content matched, or "" for none.
func LessonShapeName(raw any) string {
	for _, shape := range lessonShapes {
		if shape.matches(raw) {
			return shape.name
		}
	}
	return ""
}

func firstObject(raw any) (map[string]any, []any, bool) {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil, nil, false
	}
	obj, ok := list[0].(map[string]any)
	return obj, list, ok
}

// shape (a): [{title, content:string}]
func isTitledList(raw any) bool {
	first, _, ok := firstObject(raw)
	if !ok {
		return false
	}
	_, hasTitle := first["title"]
	return hasTitle
}

func titledListBlocks(raw any) []LessonBlock {
	var blocks []LessonBlock
	for _, item := range raw.([]any) {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		content, ok := obj["content"].(string)
		if !ok {
			continue
		}
		blocks = append(blocks, LessonBlock{Title: stringOf(obj["title"]), Content: content})
	}
	return blocks
}

// shape (b): [{type, content:string|list}]
func isTypedList(raw any) bool {
	first, _, ok := firstObject(raw)
	if !ok {
		return false
	}
	_, hasType := first["type"]
	return hasType
}

func typedListBlocks(raw any) []LessonBlock {
	var blocks []LessonBlock
	for _, item := range raw.([]any) {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		content, ok := flattenContent(obj["content"])
		if !ok {
			continue
		}
		blocks = append(blocks, LessonBlock{
			Title:   strings.ToUpper(stringOf(obj["type"])),
			Content: content,
		})
	}
	return blocks
}

func flattenContent(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			if s := stringOf(p); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n"), true
	default:
		return "", false
	}
}

// shape (c): {title, content:[{type:"text",content} | {title,description}]}
func isTitledItems(raw any) bool {
	obj, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	if stringOf(obj["title"]) == "" {
		return false
	}
	_, ok = obj["content"].([]any)
	return ok
}

func titledItemsBlocks(raw any) []LessonBlock {
	obj := raw.(map[string]any)
	blocks := []LessonBlock{{Title: stringOf(obj["title"])}}
	return append(blocks, itemBlocks(obj["content"].([]any))...)
}

// shape (d): {topic|advanced_topic, content:[{title,description}]}
func isTopicItems(raw any) bool {
	obj, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	if topicOf(obj) == "" {
		return false
	}
	_, ok = obj["content"].([]any)
	return ok
}

func topicItemsBlocks(raw any) []LessonBlock {
	obj := raw.(map[string]any)
	blocks := []LessonBlock{{Title: topicOf(obj)}}
	return append(blocks, itemBlocks(obj["content"].([]any))...)
}

func topicOf(obj map[string]any) string {
	if t := stringOf(obj["topic"]); t != "" {
		return t
	}
	return stringOf(obj["advanced_topic"])
}

func itemBlocks(items []any) []LessonBlock {
	var blocks []LessonBlock
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if stringOf(obj["type"]) == "text" {
			if content := stringOf(obj["content"]); content != "" {
				blocks = append(blocks, LessonBlock{Content: content})
			}
			continue
		}
		title := stringOf(obj["title"])
		description := stringOf(obj["description"])
		if title == "" && description == "" {
			continue
		}
		blocks = append(blocks, LessonBlock{Title: title, Content: description})
	}
	return blocks
}

// shape (e): any object with a string content
func isSingle(raw any) bool {
	obj, ok := raw.(map[string]any)
	if !ok {
		return false
	}
	_, ok = obj["content"].(string)
	return ok
}

func singleBlock(raw any) []LessonBlock {
	obj := raw.(map[string]any)
	title := stringOf(obj["title"])
	if title == "" {
		title = "Lesson"
	}
	return []LessonBlock{{Title: title, Content: obj["content"].(string)}}
}
