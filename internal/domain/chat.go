package domain

// ChatMessage is one turn in a conversation. Role is "user" for shopper
// turns; any other value is treated as a model turn. The last message
// in a request is the active query and is never part of the history
// handed to the model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnswerProduct is a product card surfaced alongside an answer.
type AnswerProduct struct {
	Name       string `json:"name"`
	Price      string `json:"price"`
	ImageURL   string `json:"image_url"`
	ProductURL string `json:"product_url"`
}

// ChatAnswer is the stable response shape produced by the answer
// composer. Answer and Summary are never both empty: total model
// failure substitutes a fixed fallback message for both. Sources are
// the purchase URLs of the matched products, in order.
type ChatAnswer struct {
	Answer   string          `json:"answer"`
	Summary  string          `json:"summary"`
	Sources  []string        `json:"sources"`
	Products []AnswerProduct `json:"products"`
}
