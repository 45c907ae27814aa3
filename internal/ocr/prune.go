package ocr

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Prune drops fields of a saved Vision response that carry no information
// for proofreading: empty annotation lists, zero scores, per-element
// confidences, detected languages, default block types and the space breaks
// between symbols of one word. The break after a word's last symbol is kept
// since Assemble needs it. Unknown fields pass through untouched.
func Prune(data []byte) ([]byte, error) {
	data, err := unwrapCached(data)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var resp map[string]any
	if err := dec.Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to parse OCR response: %w", err)
	}

	pruneResponse(resp)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return nil, fmt.Errorf("failed to encode OCR response: %w", err)
	}
	return buf.Bytes(), nil
}

func pruneResponse(resp map[string]any) {
	for _, key := range []string{"faceAnnotations", "landmarkAnnotations", "logoAnnotations",
		"labelAnnotations", "localizedObjectAnnotations"} {
		deleteIf(resp, key, isEmptyList)
	}

	texts := objects(resp["textAnnotations"])
	for _, t := range texts {
		deleteIf(t, "locations", isEmptyList)
		deleteIf(t, "properties", isEmptyList)
		deleteIf(t, "mid", isEmptyString)
		deleteIf(t, "locale", isEmptyString)
		deleteIf(t, "score", isZero)
		deleteIf(t, "confidence", isZero)
		deleteIf(t, "topicality", isZero)
		pruneBox(t, "boundingPoly")
		pruneNode(t)
	}

	full := object(resp["fullTextAnnotation"])
	if full == nil {
		return
	}
	if len(texts) > 0 {
		if text, ok := full["text"].(string); ok && text == texts[0]["description"] {
			delete(full, "text")
		}
	}
	for _, page := range objects(full["pages"]) {
		pruneProperty(page)
		pruneNode(page, "confidence")
		for _, block := range objects(page["blocks"]) {
			pruneElement(block)
			if isNumber(block["blockType"], "1") || block["blockType"] == "TEXT" {
				delete(block, "blockType")
			}
			for _, para := range objects(block["paragraphs"]) {
				pruneElement(para)
				for _, word := range objects(para["words"]) {
					pruneElement(word)
					symbols := objects(word["symbols"])
					for i, sym := range symbols {
						pruneElement(sym)
						pruneBreak(sym, i == len(symbols)-1)
					}
				}
			}
		}
	}
}

// pruneElement cleans a block, paragraph, word or symbol.
func pruneElement(node map[string]any) {
	pruneBox(node, "boundingBox")
	pruneProperty(node)
	pruneNode(node, "confidence")
}

func pruneBreak(sym map[string]any, last bool) {
	prop := object(sym["property"])
	if prop == nil {
		return
	}
	if br := object(prop["detectedBreak"]); br != nil {
		if br["isPrefix"] == false {
			delete(br, "isPrefix")
		}
		if !last && len(br) == 1 && isSpaceBreak(br["type"]) {
			delete(prop, "detectedBreak")
		}
	}
	if len(prop) == 0 {
		delete(sym, "property")
	}
}

func pruneProperty(node map[string]any) {
	prop := object(node["property"])
	if prop == nil {
		return
	}
	delete(prop, "detectedLanguages")
	if len(prop) == 0 {
		delete(node, "property")
	}
}

func pruneBox(node map[string]any, key string) {
	if box := object(node[key]); box != nil {
		pruneNode(box)
	}
}

// pruneNode removes empty normalizedVertices and property values, then the
// named keys.
func pruneNode(node map[string]any, keys ...string) {
	deleteIf(node, "normalizedVertices", isEmptyList)
	deleteIf(node, "property", func(v any) bool {
		m, ok := v.(map[string]any)
		return ok && len(m) == 0
	})
	for _, key := range keys {
		delete(node, key)
	}
}

func deleteIf(node map[string]any, key string, pred func(any) bool) {
	if v, ok := node[key]; ok && pred(v) {
		delete(node, key)
	}
}

func object(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func objects(v any) []map[string]any {
	list, _ := v.([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func isEmptyList(v any) bool {
	list, ok := v.([]any)
	return ok && len(list) == 0
}

func isEmptyString(v any) bool {
	s, ok := v.(string)
	return ok && s == ""
}

func isZero(v any) bool {
	n, ok := v.(json.Number)
	if !ok {
		return false
	}
	f, err := n.Float64()
	return err == nil && f == 0
}

func isNumber(v any, want string) bool {
	n, ok := v.(json.Number)
	return ok && n.String() == want
}

// isSpaceBreak matches BreakSpace by number or by name.
func isSpaceBreak(v any) bool {
	return isNumber(v, "1") || v == "SPACE"
}
