package finsight

import "github.com/santhosh-tekuri/jsonschema/v6"

var (
	BuildFinalReport = buildFinalReport
	EmptyPayload     = emptyPayload
	HumanizeSource   = humanizeSource
	NormalizeRecords = normalizeRecords
	CoerceFloat      = coerceFloat
	CtxWithLogger    = ctxWithLogger
	DecodeOracleJSON = decodeOracleJSON
	StripCodeFence   = stripCodeFence
)

func PlanSchema() *jsonschema.Schema     { return planSchema }
func EntitiesSchema() *jsonschema.Schema { return entitiesSchema }

// Gate and breakdown constants exposed for assertions.
const (
	ValidConfidence   = validConfidence
	InvalidConfidence = invalidConfidence
	QualityPenalty    = qualityPenalty
	CoverageThreshold = coverageThreshold
	StrongInference   = strongInference
	WeakInference     = weakInference
)
