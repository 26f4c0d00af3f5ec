package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/FAU-CDI/metaextract/internal/extract"
	"github.com/FAU-CDI/metaextract/internal/template"
	"github.com/FAU-CDI/metaextract/pkg/jsonfile"
)

func mustTemplate(t *testing.T, input string) *template.Template {
	t.Helper()
	var tpl template.Template
	if err := json.Unmarshal([]byte(input), &tpl); err != nil {
		t.Fatalf("failed to unmarshal template: %s", err)
	}
	return &tpl
}

func mustData(t *testing.T, input string) *extract.Data {
	t.Helper()
	var data extract.Data
	if err := json.Unmarshal([]byte(input), &data); err != nil {
		t.Fatalf("failed to unmarshal data: %s", err)
	}
	return &data
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     string
		sections []string
		want     string
	}{
		{
			name:     "source value",
			template: `{"k: C":{"p":"#Value"}}`,
			data:     `{"variables":{"k":{"p":"X"}}}`,
			sections: []string{"variables"},
			want:     `{"k: C":{"p":"X"}}`,
		},
		{
			name:     "literal",
			template: `{"k: C":{"p":"literalY"}}`,
			data:     `{"variables":{"k":{"p":"X"}}}`,
			sections: []string{"variables"},
			want:     `{"k: C":{"p":"literalY"}}`,
		},
		{
			name:     "literal without data",
			template: `{"k: C":{"p":"literalY"}}`,
			data:     `{"variables":{}}`,
			sections: []string{"variables"},
			want:     `{"k: C":{"p":"literalY"}}`,
		},
		{
			name:     "scalar section",
			template: `{"title: Title":{"hasName":"#Value"}}`,
			data:     `{"global_attributes":{"title":"Run 1"}}`,
			sections: []string{"variables", "global_attributes"},
			want:     `{"title: Title":{"hasName":"Run 1"}}`,
		},
		{
			name:     "non-string values",
			template: `{"n: C":{"p":"#Value","q":"#Value"}}`,
			data:     `{"dimensions":{"n":{"p":12,"q":{"a":true}}}}`,
			sections: []string{"dimensions"},
			want:     `{"n: C":{"p":12,"q":{"a":true}}}`,
		},
		{
			name:     "list of strings",
			template: `{"k: C":{"p":"#Value","q":"#Value"}}`,
			data:     `{"variables":{"k":{"p":["a","b","c"],"q":[1,"b"]}}}`,
			sections: []string{"variables"},
			want:     `{"k: C":{"p":"abc","q":[1,"b"]}}`,
		},
		{
			name:     "first section wins",
			template: `{"k: C":{"p":"#Value"}}`,
			data:     `{"variables":{"k":{"p":"first"}},"global_attributes":{"k":"second"}}`,
			sections: []string{"global_attributes", "variables"},
			want:     `{"k: C":{"p":"second"}}`,
		},
		{
			name:     "missing field",
			template: `{"k: C":{"p":"#Value","q":"lit","r":"@0"}}`,
			data:     `{"variables":{"k":{"other":"1"}}}`,
			sections: []string{"variables"},
			want:     `{"k: C":{"q":"lit","r":"@0"}}`,
		},
		{
			name:     "missing section",
			template: `{"time: Duration":{"hasValue":"#Value","unit":"s","of":"@0"},"job: Job":{"hasName":"#Value"}}`,
			data:     `{"variables":{"time":"12"}}`,
			sections: []string{"variables", "job_data"},
			want:     `{"time: Duration":{"hasValue":"12","unit":"s","of":"@0"},"job: Job":{}}`,
		},
		{
			name:     "source key before first colon",
			template: `{"k: ext:C":{"ext:p":"#Value"}}`,
			data:     `{"variables":{"k":"v"}}`,
			sections: []string{"variables"},
			want:     `{"k: ext:C":{"ext:p":"v"}}`,
		},
		{
			name:     "tabular",
			template: `{"temp: Measurement":{"value":"#","unit":"#Value","kind":"temperature"}}`,
			data:     `{"csv_dict":{"headers":["id","temp"],"rows":{"1":{"temp":"300"}}}}`,
			sections: []string{"csv_dict"},
			want:     `{"temp: Measurement":{"value":"#","unit":"#Value","kind":"temperature"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md, err := Resolve(mustTemplate(t, tt.template), mustData(t, tt.data), tt.sections)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			got, err := json.Marshal(md)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolve_MalformedKey(t *testing.T) {
	_, err := Resolve(mustTemplate(t, `{"k":{"p":"#Value"}}`), mustData(t, `{}`), nil)
	if !errors.Is(err, template.ErrMalformedNodeKey) {
		t.Errorf("Resolve() error = %v, want ErrMalformedNodeKey", err)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	tpl := mustTemplate(t, `{"b: B":{"x":"#Value","y":"@1"},"a: A":{"z":"#Value","w":"ü"}}`)
	data := mustData(t, `{"variables":{"a":{"z":["ä","b"]},"b":{"x":0.50}}}`)

	var outputs [][]byte
	for range 3 {
		md, err := Resolve(tpl, data, []string{"variables"})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		out, err := jsonfile.Marshal(md)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		outputs = append(outputs, out)
	}

	for _, out := range outputs[1:] {
		if !bytes.Equal(out, outputs[0]) {
			t.Errorf("Resolve() is not deterministic:\n%s\n%s", outputs[0], out)
		}
	}
	if !bytes.Contains(outputs[0], []byte(`"äb"`)) || !bytes.Contains(outputs[0], []byte(`0.50`)) {
		t.Errorf("Resolve() did not preserve values:\n%s", outputs[0])
	}
}

func TestMetadata_JSON(t *testing.T) {
	const input = `{"a: A":{"p":"@0","q":1.5,"r":{"x":"y"},"s":"#Value"}}`

	var md Metadata
	if err := json.Unmarshal([]byte(input), &md); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	props, _ := md.Get("a: A")
	if p, _ := props.Get("p"); !isReference(p, 0) {
		t.Errorf("p = %+v, want reference to 0", p)
	}
	if q, _ := props.Get("q"); q.Data != json.Number("1.5") {
		t.Errorf("q = %+v, want 1.5", q)
	}

	got, err := json.Marshal(&md)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(got) != input {
		t.Errorf("Marshal() = %s, want %s", got, input)
	}
}

func isReference(v Value, index int) bool {
	got, ok := v.Reference()
	return ok && got == index
}

func TestValue_Reference(t *testing.T) {
	if isReference(Extracted("@1"), 1) {
		t.Error("extracted value was treated as a reference")
	}
	if !isReference(Authored(template.NewReference(2)), 2) {
		t.Error("authored reference was not treated as a reference")
	}
	if _, ok := Authored(template.NewLiteral("@2")).Reference(); ok {
		t.Error("literal was treated as a reference")
	}
}
