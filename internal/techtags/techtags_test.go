package techtags

import (
	"reflect"
	"strings"
	"testing"
)

var (
	testAllow = []string{"AI", "ML", "QA", "C#", "SQL", "AWS", "GO"}
	testStop  = []string{"DATA", "SUPPORT", "TEAMS", "DESIGN"}
)

func TestNewVocabulary(t *testing.T) {
	got := NewVocabulary(
		[]string{"Python;Docker", "N/A", "go, Kubernetes"},
		[]string{"python, R, AWS", ""},
	)
	want := []string{"AWS", "DOCKER", "GO", "KUBERNETES", "PYTHON"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NewVocabulary = %v, want %v", got, want)
	}
}

func TestExtract(t *testing.T) {
	vocab := NewVocabulary([]string{
		"PYTHON;DOCKER;AI;ML;DATA;SUPPORT;GO;KAFKA;SQL;C#;BIG DATA;DB",
	})
	e := NewExtractor(vocab, testAllow, testStop)

	tests := []struct {
		name                         string
		explicit, title, reqs, resps string
		want                         string
	}{
		{
			name:     "explicit list kept and extended",
			explicit: "Python, FastAPI",
			title:    "Backend Developer",
			reqs:     "Experience with Docker and Kafka.",
			want:     "PYTHON;FASTAPI;DOCKER;KAFKA",
		},
		{
			name:  "short tokens need allowlist",
			title: "AI/ML Engineer",
			reqs:  "ML pipelines, AI research, GO is a plus, DB skills",
			want:  "AI;GO;ML",
		},
		{
			name:  "stoplist blocks broad words",
			reqs:  "Data analysis and support for teams",
			resps: "design data flows",
			want:  NotAvailable,
		},
		{
			name: "substring is not a whole word",
			reqs: "pythonic code, dockerized apps",
			want: NotAvailable,
		},
		{
			name:  "punctuation around words is ignored",
			resps: "(SQL), C#; python!",
			want:  "C#;PYTHON;SQL",
		},
		{
			name:     "explicit N/A with no matches",
			explicit: "N/A",
			title:    "Office Manager",
			want:     NotAvailable,
		},
		{
			name:     "case-insensitive dedup against explicit list",
			explicit: "python;Python;PYTHON",
			reqs:     "python",
			want:     "PYTHON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(tt.explicit, tt.title, tt.reqs, tt.resps)
			if got != tt.want {
				t.Errorf("Extract = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractNeverDuplicates(t *testing.T) {
	vocab := NewVocabulary([]string{"JAVA;SPRING;KAFKA"})
	e := NewExtractor(vocab, nil, nil)
	got := e.Extract("java;Spring", "Java Developer", "java spring kafka", "KAFKA java")

	seen := make(map[string]bool)
	for _, tok := range strings.Split(got, ";") {
		key := strings.ToUpper(tok)
		if seen[key] {
			t.Fatalf("duplicate token %q in %q", tok, got)
		}
		seen[key] = true
	}
}
