package mapper

import "github.com/loziogigio/omnicommerce/internal/domain"

// categories maps id_group. Plain string entries name the category by its
// code; record entries carry name, slug and parent_name.
func categories(val domain.Value) []domain.CategoryRef {
	if codes, ok := val.AsStrings(); ok {
		out := make([]domain.CategoryRef, len(codes))
		for i, c := range codes {
			out[i] = domain.CategoryRef{Nome: c, Slug: c}
		}
		return out
	}
	if s, ok := val.AsString(); ok {
		return []domain.CategoryRef{{Nome: s, Slug: s}}
	}

	recs, _ := val.AsRecords()
	out := make([]domain.CategoryRef, len(recs))
	for i, r := range recs {
		ref := domain.CategoryRef{Nome: r.Text("name"), Slug: r.Text("slug")}
		if r.Has("parent_name") && !r.Get("parent_name").IsNull() {
			parent := r.Text("parent_name")
			ref.Parent = &parent
		}
		out[i] = ref
	}
	return out
}

// namedRefs maps brand and tag records.
func namedRefs(val domain.Value) []domain.NamedRef {
	recs, _ := val.AsRecords()
	out := make([]domain.NamedRef, len(recs))
	for i, r := range recs {
		out[i] = domain.NamedRef{Nome: r.Text("name"), Slug: r.Text("slug")}
	}
	return out
}

func variants(val domain.Value) []domain.Variant {
	recs, _ := val.AsRecords()
	out := make([]domain.Variant, len(recs))
	for i, r := range recs {
		v := domain.Variant{
			ID:     r.Text("id"),
			Prezzo: number(r.Get("price")),
		}
		if r.Has("sale_price") {
			v.PrezzoScontato = number(r.Get("sale_price"))
		}
		if r.Has("size") {
			v.Taglia = options(r.Get("size"), "size_name", "size")
		}
		if r.Has("colors") {
			v.Colori = options(r.Get("colors"), "color_name", "color")
		}
		out[i] = v
	}
	return out
}

func options(val domain.Value, nameKey, valueKey string) []domain.Option {
	recs, _ := val.AsRecords()
	out := make([]domain.Option, len(recs))
	for i, r := range recs {
		out[i] = domain.Option{Nome: r.Text(nameKey), Valore: r.Text(valueKey)}
	}
	return out
}
