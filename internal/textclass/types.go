package textclass

// #region lang
// Lang is the detected script of a user query.
type Lang string

const (
	LangRU    Lang = "ru"
	LangEN    Lang = "en"
	LangOther Lang = "other"
)

// #endregion lang

// #region query-type
// QueryType is the coarse category of a user query. There is no
// "unclassified" value: anything that matches nothing falls through
// to QueryServices.
type QueryType string

const (
	QueryTariffs  QueryType = "tariffs"
	QueryRules    QueryType = "rules"
	QueryServices QueryType = "services"
)

// #endregion query-type
