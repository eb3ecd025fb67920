package sqlast

// UnaryOperator is a prefix operator over a single Expression.
type UnaryOperator string

const (
	OpNot UnaryOperator = "NOT"
	OpNeg UnaryOperator = "-"
)

// BinaryOperator is an infix operator. In and Between/NotBetween take a
// sequence on the right-hand side instead of a single Expression.
type BinaryOperator string

const (
	OpEq            BinaryOperator = "="
	OpNotEq         BinaryOperator = "<>"
	OpLess          BinaryOperator = "<"
	OpLessEq        BinaryOperator = "<="
	OpGreater       BinaryOperator = ">"
	OpGreaterEq     BinaryOperator = ">="
	OpIn            BinaryOperator = "IN"
	OpLike          BinaryOperator = "LIKE"
	OpBetween       BinaryOperator = "BETWEEN"
	OpNotBetween    BinaryOperator = "NOT BETWEEN"
	OpAnd           BinaryOperator = "AND"
	OpOr            BinaryOperator = "OR"
)

// JoinType enumerates the join kinds the generator can emit. Cross join
// is representable but never produced by the sampler (every non-cross
// join carries an equijoin predicate; cross join is excluded from
// JoinSamplerConfig.JoinTypes per spec §4.3).
type JoinType string

const (
	InnerJoin JoinType = "INNER JOIN"
	LeftJoin  JoinType = "LEFT JOIN"
	RightJoin JoinType = "RIGHT JOIN"
	FullJoin  JoinType = "FULL JOIN"
	CrossJoin JoinType = "CROSS JOIN"
)

// FunctionName is the closed set of aggregate functions the aggregate
// sampler chooses from.
type FunctionName string

const (
	FuncCount FunctionName = "COUNT"
	FuncMin   FunctionName = "MIN"
	FuncMax   FunctionName = "MAX"
	FuncSum   FunctionName = "SUM"
	FuncAvg   FunctionName = "AVG"
)

// AllFunctionNames is the full aggregate set, used by the aggregate
// sampler when a column carries no type/key restriction.
var AllFunctionNames = []FunctionName{FuncCount, FuncMin, FuncMax, FuncSum, FuncAvg}
