package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/repeatio/examweb/internal/quiz"
)

const bankSchemaURL = "schema://question-bank.json"

// bankSchema describes a JSON bank file: {name, questions}.
var bankSchema = map[string]any{
	"type":     "object",
	"required": []any{"name", "questions"},
	"properties": map[string]any{
		"name": map[string]any{"type": "string", "minLength": 1},
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []any{"type", "content", "answer"},
				"properties": map[string]any{
					"id":          map[string]any{"type": "string"},
					"type":        map[string]any{"enum": []any{string(quiz.TypeChoice), string(quiz.TypeJudge)}},
					"content":     map[string]any{"type": "string"},
					"answer":      map[string]any{"type": "string"},
					"explanation": map[string]any{"type": "string"},
					"options": map[string]any{
						"type":     "array",
						"maxItems": quiz.MaxOptions,
						"items":    map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func bankFileSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		// The compiler expects a parsed JSON value, so round-trip the
		// definition through encoding/json.
		raw, err := json.Marshal(bankSchema)
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(raw, &def); err != nil {
			schemaErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(bankSchemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(bankSchemaURL)
	})
	return compiledSchema, schemaErr
}

// bankFile is the on-disk JSON bank layout.
type bankFile struct {
	Name      string          `json:"name"`
	Questions []quiz.Question `json:"questions"`
}

// ParseJSON reads a {name, questions} bank file. The document is checked
// against the bank schema before decoding; questions that then fail
// validation are skipped like spreadsheet rows.
func (im *Importer) ParseJSON(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json bank: %w", err)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	schema, err := bankFileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile bank schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("bank schema validation failed: %w", err)
	}

	var file bankFile
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode json bank: %w", err)
	}

	res := &Result{}
	var questions []quiz.Question
	for i, q := range file.Questions {
		q.Answered = false
		if q.ID == "" {
			q.ID = im.newID()
		}
		if q.Type == quiz.TypeChoice {
			q.Answer = quiz.NormalizeChoiceAnswer(q.Answer)
		} else if judged, ok := quiz.NormalizeJudgeAnswer(q.Answer); ok {
			q.Answer = judged
		}
		if err := validateQuestion(&q); err != nil {
			res.Skipped = append(res.Skipped, Skipped{Row: i + 1, Reason: err.Error()})
			im.logger.Warn("question skipped", "bank", file.Name, "index", i+1, "reason", err)
			continue
		}
		im.warnUnmatchedAnswer(file.Name, i+1, &q)
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%s: %w", file.Name, ErrNoQuestions)
	}
	res.Bank = im.newBank(file.Name, questions)
	return res, nil
}
