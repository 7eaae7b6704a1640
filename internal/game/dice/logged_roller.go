package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger. Every roll and weighted draw is logged at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Source returns the underlying randomness source.
func (r *Roller) Source() Source {
	return r.src
}

// Roll evaluates expr and logs the result.
//
// Precondition: expr must come from Parse.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Ints("dropped", result.Dropped),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// RollExpr parses expr and rolls it, logging the result.
//
// Postcondition: Returns a RollResult or a parse error.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// Weighted draws an index from weights and logs the choice.
//
// Postcondition: Returns an error when no weight is positive.
func (r *Roller) Weighted(table string, weights []int) (int, error) {
	i, err := Weighted(weights, r.src)
	if err != nil {
		return 0, err
	}
	r.logger.Debug("weighted draw",
		zap.String("table", table),
		zap.Int("index", i),
		zap.Int("candidates", len(weights)),
	)
	return i, nil
}
