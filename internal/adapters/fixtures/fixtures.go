// Package fixtures loads the static quiz tables: languages, questions,
// translations and precomputed scores. Every file is checked against its
// JSON schema before decoding.
package fixtures

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"math/rand"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"github.com/okian/babellm/internal/domain/model"
	"github.com/okian/babellm/pkg/logger"
	"github.com/okian/babellm/pkg/metrics"
)

// Table names double as file stems and schema names.
const (
	TableLanguages    = "languages"
	TableQuestions    = "questions"
	TableTranslations = "translations"
	TableScores       = "scores"
)

// SourceLanguage is never offered as a round item.
const SourceLanguage = "en"

//go:embed data/*.json
var embeddedData embed.FS

//go:embed schema/*.json
var embeddedSchemas embed.FS

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	fsys fs.FS
	log  logger.Logger
}

// WithDir reads the tables from dir instead of the embedded set.
func WithDir(dir string) Option {
	return func(o *loadOptions) {
		if dir != "" {
			o.fsys = os.DirFS(dir)
		}
	}
}

// WithFS reads the tables from fsys.
func WithFS(fsys fs.FS) Option {
	return func(o *loadOptions) {
		if fsys != nil {
			o.fsys = fsys
		}
	}
}

// WithLogger sets the logger used while loading.
func WithLogger(l logger.Logger) Option {
	return func(o *loadOptions) {
		if l != nil {
			o.log = l
		}
	}
}

// Store is an immutable, validated view of the quiz tables.
type Store struct {
	languages     map[string]model.Language
	languageOrder []string
	questions     []model.Question
	questionIndex map[string]int
	translations  map[string]map[string]model.Translation
	scores        map[string]map[string]model.Score
}

type questionsFile struct {
	Questions []model.Question `json:"questions"`
}

// Load reads and validates all four tables.
func Load(ctx context.Context, opts ...Option) (*Store, error) {
	o := loadOptions{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fsys == nil {
		sub, err := fs.Sub(embeddedData, "data")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFixture, err)
		}
		o.fsys = sub
	}

	raw := make(map[string][]byte, 4)
	for _, table := range []string{TableLanguages, TableQuestions, TableTranslations, TableScores} {
		b, err := readTable(o.fsys, table)
		if err != nil {
			return nil, err
		}
		raw[table] = b
	}

	s := &Store{questionIndex: make(map[string]int)}

	order, err := objectKeys(raw[TableLanguages])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFixture, TableLanguages, err)
	}
	if err := json.Unmarshal(raw[TableLanguages], &s.languages); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFixture, TableLanguages, err)
	}
	s.languageOrder = order
	for code, lang := range s.languages {
		lang.Code = code
		s.languages[code] = lang
	}

	var qf questionsFile
	if err := json.Unmarshal(raw[TableQuestions], &qf); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFixture, TableQuestions, err)
	}
	for i, q := range qf.Questions {
		if _, dup := s.questionIndex[q.ID]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate id %q", ErrInvalidFixture, TableQuestions, q.ID)
		}
		s.questionIndex[q.ID] = i
	}
	s.questions = qf.Questions

	if err := json.Unmarshal(raw[TableTranslations], &s.translations); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFixture, TableTranslations, err)
	}
	if err := json.Unmarshal(raw[TableScores], &s.scores); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidFixture, TableScores, err)
	}

	o.log.Info(ctx, "fixtures loaded",
		logger.Int("languages", len(s.languages)),
		logger.Int("questions", len(s.questions)),
		logger.Int("translated_questions", len(s.translations)),
		logger.Int("scored_questions", len(s.scores)))
	return s, nil
}

func readTable(fsys fs.FS, table string) ([]byte, error) {
	name := table + ".json"
	doc, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidFixture, name, err)
	}
	schema, err := embeddedSchemas.ReadFile("schema/" + name)
	if err != nil {
		return nil, fmt.Errorf("%w: schema %s: %v", ErrInvalidFixture, name, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: validate %s: %v", ErrInvalidFixture, name, err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("%w: %s failed schema validation: %v", ErrInvalidFixture, name, errs)
	}
	return doc, nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(b []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected key, got %v", tok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

func miss(table, format string, args ...any) error {
	metrics.RecordFixtureMiss(table)
	return fmt.Errorf("%w: %s: %s", ErrMissingFixture, table, fmt.Sprintf(format, args...))
}

// Questions returns every question in file order.
func (s *Store) Questions() []model.Question {
	out := make([]model.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Question looks a question up by id.
func (s *Store) Question(id string) (model.Question, error) {
	i, ok := s.questionIndex[id]
	if !ok {
		return model.Question{}, miss(TableQuestions, "question %q not found", id)
	}
	return s.questions[i], nil
}

// Language looks a language up by code.
func (s *Store) Language(code string) (model.Language, error) {
	lang, ok := s.languages[code]
	if !ok {
		return model.Language{}, miss(TableLanguages, "language %q not found", code)
	}
	return lang, nil
}

// LanguageOrder returns language codes in file order. Ranking ties break on it.
func (s *Store) LanguageOrder() []string {
	out := make([]string, len(s.languageOrder))
	copy(out, s.languageOrder)
	return out
}

// Translation returns the translation of questionID into code.
func (s *Store) Translation(questionID, code string) (model.Translation, error) {
	t, ok := s.translations[questionID][code]
	if !ok {
		return model.Translation{}, miss(TableTranslations, "no %s translation for %q", code, questionID)
	}
	return t, nil
}

// Score returns the stored score for questionID in code.
func (s *Store) Score(questionID, code string) (model.Score, error) {
	sc, ok := s.scores[questionID][code]
	if !ok {
		return model.Score{}, miss(TableScores, "no %s score for %q", code, questionID)
	}
	return sc, nil
}

// PickLanguages chooses n random languages, other than the source language,
// that have a translation of questionID.
func (s *Store) PickLanguages(questionID string, n int, rng *rand.Rand) ([]model.Language, error) {
	if _, err := s.Question(questionID); err != nil {
		return nil, err
	}
	available := make([]model.Language, 0, len(s.languageOrder))
	for _, code := range s.languageOrder {
		if code == SourceLanguage {
			continue
		}
		if _, ok := s.translations[questionID][code]; ok {
			available = append(available, s.languages[code])
		}
	}
	if len(available) < n {
		return nil, miss(TableTranslations, "question %q has %d translations, need %d", questionID, len(available), n)
	}
	rng.Shuffle(len(available), func(i, j int) { available[i], available[j] = available[j], available[i] })
	return available[:n], nil
}

// Stats summarises table sizes.
type Stats struct {
	Languages    int `json:"languages"`
	Questions    int `json:"questions"`
	Translations int `json:"translations"`
	Scores       int `json:"scores"`
}

// Stats counts the loaded rows.
func (s *Store) Stats() Stats {
	st := Stats{Languages: len(s.languages), Questions: len(s.questions)}
	for _, byLang := range s.translations {
		st.Translations += len(byLang)
	}
	for _, byLang := range s.scores {
		st.Scores += len(byLang)
	}
	return st
}
