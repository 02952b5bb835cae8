// Package templates loads PROM question-set definitions from JSON files.
//
// A template named "OxfordKneeScore" lives in "oxfordkneescore.json"; names
// are lower-cased and spaces become underscores. Templates are re-read on
// every Load.
package templates

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when no template file matches the name.
var ErrNotFound = errors.New("template not found")

// QuestionID is a template question id. Templates and answers may spell it as
// a JSON string or number; both decode to the same string form.
type QuestionID string

func (q *QuestionID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = QuestionID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Errorf("question id must be a string or number, got %s", string(data))
	}
	*q = QuestionID(n.String())
	return nil
}

// Question is the part of a template question the backend validates against.
type Question struct {
	ID       QuestionID `json:"id"`
	RangeMin *int       `json:"range_min,omitempty"`
	RangeMax *int       `json:"range_max,omitempty"`
}

// HasRange reports whether both bounds are declared.
func (q Question) HasRange() bool {
	return q.RangeMin != nil && q.RangeMax != nil
}

// Template is a parsed PROM template. Raw keeps the full document, including
// display metadata, for clients rendering the form.
type Template struct {
	Name      string
	Questions []Question
	Raw       map[string]interface{}
}

// RawQuestions returns the questions exactly as declared in the file.
func (t *Template) RawQuestions() []interface{} {
	qs, _ := t.Raw["questions"].([]interface{})
	if qs == nil {
		return []interface{}{}
	}
	return qs
}

// Question looks up a question by id.
func (t *Template) Question(id QuestionID) (Question, bool) {
	for _, q := range t.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Loader is the read-only template lookup consumed by the PROM services.
type Loader interface {
	Load(name string) (*Template, error)
}

// Store reads templates from a filesystem.
type Store struct {
	fsys fs.FS
}

func NewStore(fsys fs.FS) *Store {
	return &Store{fsys: fsys}
}

// NewDirStore reads templates from a directory on disk.
func NewDirStore(dir string) *Store {
	return NewStore(os.DirFS(dir))
}

// FileName maps a template name to its file name.
func FileName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_") + ".json"
}

func (s *Store) Load(name string) (*Template, error) {
	file := FileName(name)
	if strings.ContainsAny(file, `/\`) || strings.HasPrefix(file, ".") {
		return nil, errors.Wrapf(ErrNotFound, "invalid template name %q", name)
	}

	data, err := fs.ReadFile(s.fsys, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNotFound, "no PROM template found: %s", name)
		}
		return nil, errors.Wrapf(err, "failed to read template %s", name)
	}

	var doc struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to parse template %s", name)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to parse template %s", name)
	}

	return &Template{Name: name, Questions: doc.Questions, Raw: raw}, nil
}
