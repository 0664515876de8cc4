package service

import (
	"math"
	"testing"
)

func TestVectorizer_FitTransform(t *testing.T) {
	v := NewVectorizer(1000)
	v.Fit([]string{
		"cuanto cuesta el gps",
		"como funciona el rastreo",
		"horario de atencion",
	})

	if !v.Fitted() {
		t.Fatal("Expected vectorizer to be fitted")
	}
	if v.Dimensions() == 0 {
		t.Fatal("Expected non-empty feature space")
	}

	vec := v.Transform("cuanto cuesta el gps")

	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if math.Abs(norm-1.0) > 1e-9 {
		t.Errorf("Expected L2-normalized vector, got squared norm %.6f", norm)
	}
}

func TestVectorizer_TransformUnknownTerms(t *testing.T) {
	v := NewVectorizer(1000)
	v.Fit([]string{"cuanto cuesta el gps"})

	vec := v.Transform("zzz yyy xxx")
	for i, x := range vec {
		if x != 0 {
			t.Errorf("Expected zero vector for unknown terms, got %.4f at index %d", x, i)
		}
	}
}

func TestVectorizer_MaxFeatures(t *testing.T) {
	v := NewVectorizer(3)
	v.Fit([]string{
		"uno dos tres cuatro cinco",
		"seis siete ocho nueve diez",
	})

	if v.Dimensions() != 3 {
		t.Errorf("Expected feature space capped at 3, got %d", v.Dimensions())
	}
}

func TestVectorizer_DeterministicVocabulary(t *testing.T) {
	docs := []string{"alfa beta", "beta gama", "gama alfa"}

	a := NewVectorizer(4)
	a.Fit(docs)
	b := NewVectorizer(4)
	b.Fit(docs)

	if a.Dimensions() != b.Dimensions() {
		t.Fatalf("Expected identical dimensions, got %d and %d", a.Dimensions(), b.Dimensions())
	}
	for term, idx := range a.vocab {
		if b.vocab[term] != idx {
			t.Errorf("Term %q has index %d in one fit and %d in another", term, idx, b.vocab[term])
		}
	}
}

func TestVectorizer_EmptyFit(t *testing.T) {
	v := NewVectorizer(1000)
	v.Fit(nil)

	if v.Fitted() {
		t.Error("Expected vectorizer to stay unfitted for empty input")
	}
	if vec := v.Transform("hola"); len(vec) != 0 {
		t.Errorf("Expected empty vector from unfitted vectorizer, got length %d", len(vec))
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a    []float64
		b    []float64
		want float64
	}{
		{
			name: "identical vectors",
			a:    []float64{1, 2, 3},
			b:    []float64{1, 2, 3},
			want: 1.0,
		},
		{
			name: "orthogonal vectors",
			a:    []float64{1, 0},
			b:    []float64{0, 1},
			want: 0.0,
		},
		{
			name: "zero vector",
			a:    []float64{0, 0},
			b:    []float64{1, 1},
			want: 0.0,
		},
		{
			name: "length mismatch",
			a:    []float64{1, 2},
			b:    []float64{1, 2, 3},
			want: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine() = %.6f, want %.6f", got, tt.want)
			}
		})
	}
}

func TestNgrams(t *testing.T) {
	got := ngrams([]string{"rastreo", "gps", "satelital"})
	want := []string{"rastreo", "gps", "satelital", "rastreo gps", "gps satelital"}

	if len(got) != len(want) {
		t.Fatalf("Expected %d terms, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Term %d: got %q, want %q", i, got[i], want[i])
		}
	}

	if ngrams(nil) != nil {
		t.Error("Expected nil for empty token list")
	}
}
