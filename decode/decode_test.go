package decode

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/qri-io/diffx"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		description string
		format      Format
		input       string
		expect      string
	}{
		{
			"json keeps integers exact",
			JSON,
			`{"n": 9007199254740993, "f": 0.5, "l": [true, null]}`,
			`{"f":0.5,"l":[true,null],"n":9007199254740993}`,
		},
		{
			"yaml",
			YAML,
			"name: web\nports:\n  - 80\n  - 443\nratio: 1.5\nenabled: yes\n",
			`{"enabled":"yes","name":"web","ports":[80,443],"ratio":1.5}`,
		},
		{
			"toml array of tables",
			TOML,
			"title = \"x\"\n\n[[users]]\nid = 1\nname = \"a\"\n\n[[users]]\nid = 2\nname = \"b\"\n",
			`{"title":"x","users":[{"id":1,"name":"a"},{"id":2,"name":"b"}]}`,
		},
		{
			"ini sections",
			INI,
			"name = top\n\n[Server]\nHost = example.com\nport = 8080\n",
			`{"default":{"name":"top"},"server":{"host":"example.com","port":"8080"}}`,
		},
		{
			"ini without top level keys",
			INI,
			"[db]\nuser = root\n",
			`{"db":{"user":"root"}}`,
		},
		{
			"xml attributes & text",
			XML,
			`<config><server port="80">web</server><debug>true</debug></config>`,
			`{"config":{"debug":"true","server":{"#text":"web","-port":"80"}}}`,
		},
		{
			"csv header row",
			CSV,
			"name,age\nalice,30\nbob\n",
			`[{"age":"30","name":"alice"},{"name":"bob"}]`,
		},
		{
			"empty csv",
			CSV,
			"",
			`[]`,
		},
	}

	for _, c := range cases {
		t.Run(c.description, func(t *testing.T) {
			v, err := Decode(c.format, []byte(c.input))
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c.expect, v.String()); diff != "" {
				t.Errorf("result mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		format Format
		input  string
	}{
		{JSON, `{"a":`},
		{JSON, `{"a":1} {"b":2}`},
		{YAML, "a: [1, 2"},
		{TOML, "a = "},
		{XML, "<a><b></a>"},
		{CSV, "a,\"b\n"},
	}
	for _, c := range cases {
		if _, err := Decode(c.format, []byte(c.input)); err == nil {
			t.Errorf("%s: expected an error decoding %q", c.format, c.input)
		}
	}

	if _, err := Decode(Format("bson"), nil); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestCrossFormatEquality(t *testing.T) {
	j, err := Decode(JSON, []byte(`{"name":"web","ports":[80,443],"tls":{"enabled":true}}`))
	if err != nil {
		t.Fatal(err)
	}
	y, err := Decode(YAML, []byte("name: web\nports: [80, 443]\ntls:\n  enabled: true\n"))
	if err != nil {
		t.Fatal(err)
	}
	tm, err := Decode(TOML, []byte("name = \"web\"\nports = [80, 443]\n[tls]\nenabled = true\n"))
	if err != nil {
		t.Fatal(err)
	}

	for _, other := range []diffx.Value{y, tm} {
		changes, err := diffx.Diff(j, other)
		if err != nil {
			t.Fatal(err)
		}
		if len(changes) != 0 {
			t.Errorf("expected equal documents, got %v", changes)
		}
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"json": JSON,
		"YAML": YAML,
		"yml":  YAML,
		"Toml": TOML,
		"ini":  INI,
		"xml":  XML,
		" csv": CSV,
	}
	for name, expect := range cases {
		got, err := ParseFormat(name)
		if err != nil {
			t.Errorf("%q: %s", name, err)
			continue
		}
		if got != expect {
			t.Errorf("%q: want %s, got %s", name, expect, got)
		}
	}

	if _, err := ParseFormat("bson"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestInferFormat(t *testing.T) {
	cases := []struct {
		path   string
		expect Format
		ok     bool
	}{
		{"config.json", JSON, true},
		{"dir/values.YML", YAML, true},
		{"Cargo.toml", TOML, true},
		{"settings.ini", INI, true},
		{"feed.xml", XML, true},
		{"rows.csv", CSV, true},
		{"-", "", false},
		{"Makefile", "", false},
		{"notes.txt", "", false},
	}
	for _, c := range cases {
		got, ok := InferFormat(c.path)
		if got != c.expect || ok != c.ok {
			t.Errorf("%s: want (%q, %t), got (%q, %t)", c.path, c.expect, c.ok, got, ok)
		}
	}
}
