package rpc

import (
	"github.com/walteh/mergetags/pkg/catalog"
)

// Point addresses a boundary point by child-index path from the body.
type Point struct {
	Path   []int `json:"path"`
	Offset int   `json:"offset"`
}

type SetTokensParams struct {
	Tokens any `json:"tokens"`
}

type SetTokensResult struct {
	Tags int `json:"tags"`
}

type InsertParams struct {
	Value any `json:"value"`
}

type InsertResult struct {
	Inserted bool `json:"inserted"`
}

type ContentParams struct {
	Content string `json:"content"`
}

// ContentResult carries the delimited content and the live editor markup.
type ContentResult struct {
	Content string `json:"content"`
	HTML    string `json:"html,omitempty"`
}

type TargetParams struct {
	Target []int `json:"target"`
}

type ClickResult struct {
	Prevented bool   `json:"prevented"`
	HTML      string `json:"html"`
}

type KeyDownParams struct {
	Key string `json:"key"`
}

type KeyDownResult struct {
	Prevented bool   `json:"prevented"`
	HTML      string `json:"html"`
}

type SelectParams struct {
	Start Point  `json:"start"`
	End   *Point `json:"end,omitempty"`
}

type AutocompleteParams struct {
	Pattern string `json:"pattern"`
	Max     int    `json:"max,omitempty"`
	Fuzzy   bool   `json:"fuzzy,omitempty"`
}

type InitResult struct {
	Transformed   bool     `json:"transformed"`
	HTML          string   `json:"html"`
	ContentStyles []string `json:"content_styles"`
	ValidElements string   `json:"valid_elements"`
}

type HistoryResult struct {
	Applied bool   `json:"applied"`
	HTML    string `json:"html"`
}

type MenuResult struct {
	Items []catalog.MenuItem `json:"items"`
}

type AutocompleteResult struct {
	Suggestions []catalog.Suggestion `json:"suggestions"`
}
