/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package client

import (
	"fmt"

	"github.com/Knetic/govaluate"
)

// AlertHelp documents the variables an AlertRule's expression can use.
const AlertHelp = `Alert expressions are evaluated with govaluate (https://github.com/Knetic/govaluate).
supported variables:
  mean   (running mean bit-error-rate of the measurement so far)
  stddev (running standard deviation of the bit-error-rate)
  count  (number of samples folded into mean/stddev so far)
  last   (the most recent sample's bit-error-rate)
example: mean > 0.01 || (count > 20 && stddev > 0.05)`

var alertVariables = map[string]bool{
	"mean":   true,
	"stddev": true,
	"count":  true,
	"last":   true,
}

// AlertRule is a boolean threshold expression evaluated against a
// BERStats accumulator, letting an operator define "alarm" conditions
// (mean > X, or a spike in variance) without recompiling the CLI.
type AlertRule struct {
	Expr string
	expr *govaluate.EvaluableExpression
}

// NewAlertRule parses expr, rejecting any variable name it doesn't
// recognise so a typo fails fast instead of silently evaluating to nil.
func NewAlertRule(expr string) (*AlertRule, error) {
	parsed, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("client: parsing alert expression %q: %w", expr, err)
	}
	for _, v := range parsed.Vars() {
		if !alertVariables[v] {
			return nil, fmt.Errorf("client: alert expression references unsupported variable %q", v)
		}
	}
	return &AlertRule{Expr: expr, expr: parsed}, nil
}

// Evaluate reports whether the rule fires for the current accumulator
// state and most recent sample, last, expressed as a bit-error-rate.
func (a *AlertRule) Evaluate(stats *BERStats, last float64) (bool, error) {
	params := map[string]interface{}{
		"mean":   stats.Mean(),
		"stddev": stats.Stddev(),
		"count":  float64(stats.Count()),
		"last":   last,
	}
	result, err := a.expr.Evaluate(params)
	if err != nil {
		return false, fmt.Errorf("client: evaluating alert expression %q: %w", a.Expr, err)
	}
	fired, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("client: alert expression %q did not evaluate to a boolean", a.Expr)
	}
	return fired, nil
}
