package cartula

// Grammar inflects leaf tokens.
type Grammar interface {
	// Inflects reports whether leaves tagged tag are resolved by Inflect.
	// Other leaves render their token literally.
	Inflects(tag string) bool
	// Inflect returns the form of token under context.
	Inflect(tag, token string, context Binding) (string, error)
}

// Inflection resolves one part of speech through a lookup table.
type Inflection struct {
	Table Lookuper
	// TokenAxis is the axis the leaf token binds, e.g. "noun" or "verb".
	TokenAxis string
	// Defaults sit beneath the inherited context, for axes the clause may
	// leave unspecified.
	Defaults Binding
}

// LookupGrammar maps leaf tags to the inflection that serves them.
type LookupGrammar map[string]Inflection

func (g LookupGrammar) Inflects(tag string) bool {
	_, ok := g[tag]
	return ok
}

func (g LookupGrammar) Inflect(tag, token string, context Binding) (string, error) {
	inf, ok := g[tag]
	if !ok {
		return "", &InflectionNotFoundError{Tag: tag, Token: token, Query: context}
	}
	query := inf.Defaults.Merge(context, Binding{inf.TokenAxis: One(token)})
	form, err := inf.Table.Lookup(query)
	if err != nil {
		return "", &InflectionNotFoundError{Tag: tag, Token: token, Query: query, Cause: err}
	}
	return form, nil
}
