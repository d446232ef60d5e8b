package benchmarks_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/goccy/go-json"

	"github.com/reoring/jsongram"
	"github.com/reoring/jsongram/grammar"
	"github.com/reoring/jsongram/jsondec"
	"github.com/reoring/jsongram/sample"
)

type meta struct{ Score int64 }

func (m *meta) Decode(dec jsongram.Decoder) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	m.Score, err = k.Int("score")
	return err
}

type record struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Age    int64   `json:"age"`
	Active bool    `json:"active"`
	Meta   meta    `json:"meta"`
	Note   *string `json:"note"`
}

func (r *record) Decode(dec jsongram.Decoder) error {
	k, err := dec.Keyed()
	if err != nil {
		return err
	}
	if r.ID, err = k.String("id"); err != nil {
		return err
	}
	if r.Name, err = k.String("name"); err != nil {
		return err
	}
	if r.Age, err = k.Int("age"); err != nil {
		return err
	}
	if r.Active, err = k.Bool("active"); err != nil {
		return err
	}
	if err = k.Nested("meta", &r.Meta); err != nil {
		return err
	}
	r.Note, err = k.OptionalString("note")
	return err
}

type batch struct{ Records []record }

func (b *batch) Decode(dec jsongram.Decoder) error {
	return jsongram.Slice(&b.Records).Decode(dec)
}

// generateArray returns [{"id":"obj_0","name":"n0","age":0,"active":true,"meta":{"score":0}}, ...]
func generateArray(n int) []byte {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, `{"id":"obj_%d","name":"n%d","age":%d,"active":%t,"meta":{"score":%d}}`, i, i, i, i%2 == 0, i)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

func BenchmarkCompile(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := jsongram.Compile(&batch{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompileSample(b *testing.B) {
	data := generateArray(1)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		v, err := sample.Parse(data)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := jsongram.Compile(v); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAccepts(b *testing.B) {
	g, err := jsongram.Compile(&batch{})
	if err != nil {
		b.Fatal(err)
	}
	p, err := grammar.Parse(g.Text)
	if err != nil {
		b.Fatal(err)
	}
	input := string(generateArray(50))
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !p.Accepts(g.Root, input) {
			b.Fatal("rejected")
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	data := generateArray(1000)

	b.Run("jsondec", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var v batch
			if err := jsondec.Unmarshal(data, &v); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("go-json", func(b *testing.B) {
		b.SetBytes(int64(len(data)))
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			var v []record
			if err := json.Unmarshal(data, &v); err != nil {
				b.Fatal(err)
			}
		}
	})
}
