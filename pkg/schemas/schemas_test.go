package schemas

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ammar0144/catalog4go/pkg/models"
	"github.com/ammar0144/catalog4go/pkg/repository"
)

func TestToModelFields(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "scalars copied",
			in:   map[string]any{"name": "Widget", "price": 9.99},
			want: map[string]any{"name": "Widget", "price": 9.99},
		},
		{
			name: "fk keys pass through",
			in:   map[string]any{"category_id": uint(3)},
			want: map[string]any{"category_id": uint(3)},
		},
		{
			name: "nested object with id becomes fk",
			in:   map[string]any{"category": map[string]any{"id": uint(4), "name": "Tools"}},
			want: map[string]any{"category_id": uint(4)},
		},
		{
			name: "nested object without id dropped",
			in:   map[string]any{"category": map[string]any{"name": "Tools"}},
			want: map[string]any{},
		},
		{
			name: "nested object with nil id dropped",
			in:   map[string]any{"category": map[string]any{"id": nil}},
			want: map[string]any{},
		},
		{
			name: "slices dropped",
			in:   map[string]any{"reviews": []any{map[string]any{"rating": 5.0}}, "name": "x"},
			want: map[string]any{"name": "x"},
		},
		{
			name: "explicit fk wins over nested object",
			in: map[string]any{
				"category_id": uint(1),
				"category":    map[string]any{"id": uint(2)},
			},
			want: map[string]any{"category_id": uint(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToModelFields(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ToModelFields() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestProductFieldsExcludeUnset(t *testing.T) {
	p := Product{Name: ptr("Widget"), Stock: ptr(0)}
	got := p.Fields()
	want := map[string]any{"name": "Widget", "stock": 0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Fields() = %#v, want %#v", got, want)
	}
}

func TestProductFieldsNested(t *testing.T) {
	p := Product{
		Category: &Category{ID: ptr(uint(2)), Name: ptr("Tools")},
		Reviews:  []ReviewEmbedded{{Rating: ptr(4.0)}},
	}
	got := p.Fields()
	if _, ok := got["category"].(map[string]any); !ok {
		t.Fatalf("category should be a map, got %T", got["category"])
	}
	reviews, ok := got["reviews"].([]any)
	if !ok || len(reviews) != 1 {
		t.Fatalf("reviews should be a one-element slice, got %#v", got["reviews"])
	}

	model := ToModelFields(got)
	if model["category_id"] != uint(2) {
		t.Fatalf("category_id = %v", model["category_id"])
	}
	if _, ok := model["reviews"]; ok {
		t.Fatal("reviews should be dropped")
	}
}

func TestProductValidate(t *testing.T) {
	long := strings.Repeat("a", 201)
	tests := []struct {
		name    string
		schema  Product
		wantErr bool
	}{
		{name: "empty schema is valid", schema: Product{}},
		{name: "full valid", schema: Product{Name: ptr("Widget"), Price: ptr(9.99), Stock: ptr(10), Rating: ptr(4.5)}},
		{name: "empty name", schema: Product{Name: ptr("")}, wantErr: true},
		{name: "long name", schema: Product{Name: &long}, wantErr: true},
		{name: "zero price", schema: Product{Price: ptr(0.0)}, wantErr: true},
		{name: "negative price", schema: Product{Price: ptr(-1.0)}, wantErr: true},
		{name: "zero stock ok", schema: Product{Stock: ptr(0)}},
		{name: "negative stock", schema: Product{Stock: ptr(-1)}, wantErr: true},
		{name: "rating above five", schema: Product{Rating: ptr(5.5)}, wantErr: true},
		{name: "bad embedded review", schema: Product{Reviews: []ReviewEmbedded{{Rating: ptr(6.0)}}}, wantErr: true},
		{name: "good embedded review", schema: Product{Reviews: []ReviewEmbedded{{Rating: ptr(0.0), Comment: ptr("ok")}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schema)
			if tt.wantErr {
				if !errors.Is(err, repository.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestReviewValidate(t *testing.T) {
	long := strings.Repeat("c", 1001)
	tests := []struct {
		name    string
		schema  Review
		wantErr bool
	}{
		{name: "valid", schema: Review{Rating: ptr(4.0), ProductID: ptr(uint(1)), Comment: ptr("solid and cheap")}},
		{name: "no comment ok", schema: Review{Rating: ptr(1.0), ProductID: ptr(uint(1))}},
		{name: "missing rating", schema: Review{ProductID: ptr(uint(1))}, wantErr: true},
		{name: "rating below one", schema: Review{Rating: ptr(0.5), ProductID: ptr(uint(1))}, wantErr: true},
		{name: "missing product", schema: Review{Rating: ptr(3.0)}, wantErr: true},
		{name: "short comment", schema: Review{Rating: ptr(3.0), ProductID: ptr(uint(1)), Comment: ptr("meh")}, wantErr: true},
		{name: "empty comment", schema: Review{Rating: ptr(3.0), ProductID: ptr(uint(1)), Comment: ptr("")}, wantErr: true},
		{name: "long comment", schema: Review{Rating: ptr(3.0), ProductID: ptr(uint(1)), Comment: &long}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.schema); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProductCreate(t *testing.T) {
	ok := ProductCreate{Name: "Widget", Price: 9.99, CategoryID: 1}
	if err := Validate(ok); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}
	p := ok.ToProduct()
	if p.Stock == nil || *p.Stock != 0 {
		t.Fatalf("stock should default to 0, got %v", p.Stock)
	}
	if p.Description != nil || p.ImageURL != nil {
		t.Fatal("optional fields should stay unset")
	}

	for name, bad := range map[string]ProductCreate{
		"missing name":     {Price: 1, CategoryID: 1},
		"missing price":    {Name: "x", CategoryID: 1},
		"missing category": {Name: "x", Price: 1},
		"negative stock":   {Name: "x", Price: 1, CategoryID: 1, Stock: -2},
	} {
		if err := Validate(bad); !errors.Is(err, repository.ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", name, err)
		}
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := Validate(Category{Name: ptr("Tools")}); err != nil {
		t.Fatalf("valid category rejected: %v", err)
	}
	if err := Validate(Category{}); err == nil {
		t.Fatal("category without name should fail")
	}
	long := strings.Repeat("n", 101)
	if err := Validate(Category{Name: &long}); err == nil {
		t.Fatal("category name over 100 chars should fail")
	}
}

func TestAverageRating(t *testing.T) {
	if got := AverageRating(nil); got != nil {
		t.Fatalf("no reviews: want nil got %v", *got)
	}
	if got := AverageRating([]ReviewEmbedded{{}, {}}); got != nil {
		t.Fatalf("no ratings: want nil got %v", *got)
	}
	got := AverageRating([]ReviewEmbedded{{Rating: ptr(3.0)}, {Rating: ptr(5.0)}, {}})
	if got == nil || *got != 4.0 {
		t.Fatalf("want 4.0 got %v", got)
	}
}

func TestProductFromModel(t *testing.T) {
	m := &models.Product{
		Name:       "Lamp",
		Price:      20,
		Stock:      3,
		CategoryID: 2,
		Category:   &models.Category{Name: "Lighting"},
		Reviews: []models.Review{
			{Rating: ptr(3.0), ProductID: 1},
			{Rating: ptr(5.0), ProductID: 1},
			{ProductID: 1},
		},
	}
	m.ID = 1

	p := ProductFromModel(m)
	if p.CategoryName == nil || *p.CategoryName != "Lighting" {
		t.Fatalf("category_name = %v", p.CategoryName)
	}
	if p.Rating == nil || *p.Rating != 4.0 {
		t.Fatalf("rating = %v", p.Rating)
	}
	if len(p.Reviews) != 3 || *p.Reviews[0].ProductID != 1 || p.Reviews[2].Rating != nil {
		t.Fatalf("reviews = %#v", p.Reviews)
	}

	bare := ProductFromModel(&models.Product{Name: "Bare"})
	if bare.Rating != nil || bare.Reviews != nil || bare.CategoryName != nil {
		t.Fatalf("bare product should have no computed fields: %#v", bare)
	}
}
