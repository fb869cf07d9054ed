package router

import (
	"github.com/aroyle/depthroute/src/config"
)

// Decision names the model a request is routed to and why.
type Decision struct {
	Model          string `json:"model"`
	Reason         string `json:"reason"`
	HighCapability bool   `json:"high_capability"`
}

// Selector applies the fixed threshold policy: scores strictly above the
// threshold go to the high-capability model, everything else to the fast one.
type Selector struct {
	threshold int
	highModel string
	fastModel string
}

func NewSelector(cfg *config.RouterConfig) *Selector {
	return &Selector{
		threshold: cfg.ComplexityThreshold,
		highModel: cfg.HighModel,
		fastModel: cfg.FastModel,
	}
}

func (s *Selector) Decide(score int) Decision {
	if score > s.threshold {
		return Decision{
			Model:          s.highModel,
			Reason:         "complexity above threshold, routed to high-capability model",
			HighCapability: true,
		}
	}

	return Decision{
		Model:  s.fastModel,
		Reason: "complexity at or below threshold, routed to fast model",
	}
}

// FastModel returns the identifier of the cheap tier, used for auxiliary
// calls such as scoring.
func (s *Selector) FastModel() string {
	return s.fastModel
}
