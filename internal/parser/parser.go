// Package parser orchestrates the statement pipeline: detection,
// extraction, normalization, deduplication, and outcome reporting.
package parser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledgerparse/ledgerparse/internal/common"
	"github.com/ledgerparse/ledgerparse/internal/dedupe"
	"github.com/ledgerparse/ledgerparse/internal/detect"
	"github.com/ledgerparse/ledgerparse/internal/extract"
	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/normalize"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

// FallbackThreshold is the detection confidence below which the parser
// ignores the issuer verdict and uses the generic extractor.
const FallbackThreshold = 0.35

// Observer receives per-rule extraction outcomes after each parse. The
// adaptive learner implements it; passing nil disables learning.
type Observer interface {
	Observe(outcomes []model.RuleOutcome)
}

// Options controls the optional pipeline stages.
type Options struct {
	Normalize   bool
	Deduplicate bool
}

// DefaultOptions enables the full pipeline.
func DefaultOptions() Options {
	return Options{Normalize: true, Deduplicate: true}
}

// Parser runs the full interpretation pipeline over statement text.
type Parser struct {
	registry *registry.Registry
	detector *detect.Detector
	observer Observer
	logger   *slog.Logger
	opts     Options
}

// New builds a parser over the given registry.
func New(reg *registry.Registry, observer Observer, logger *slog.Logger, opts Options) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		registry: reg,
		detector: detect.NewDetector(reg),
		observer: observer,
		logger:   logger,
		opts:     opts,
	}
}

// Parse interprets one statement's raw text. Pipeline-level failures come
// back as an error; per-row problems are collected in the result's
// warnings so one bad row never sinks the statement.
func (p *Parser) Parse(ctx context.Context, text string) (*model.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, common.ErrEmptyInput
	}

	det := p.detector.Detect(text)
	p.logger.Debug("detected statement",
		"type", det.Type,
		"issuer", det.Issuer,
		"confidence", det.Confidence)

	result := &model.ParseResult{
		Metadata:      make(map[string]any),
		StatementType: det.Type,
		RawText:       text,
	}

	extractor, rules := p.chooseExtractor(det)
	res := extractor.Extract(text, rules)

	// An issuer extractor that comes up empty hands the text to the
	// generic recipes for the detected type rather than failing the
	// parse. The issuer's warnings and outcomes are kept: the miss is
	// exactly what the learner needs to see.
	fellBack := false
	if len(res.Transactions) == 0 && extractor.Name() != "generic" {
		fellBack = true
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s extractor produced no transactions, falling back to generic", extractor.Name()))
		generic := &extract.GenericExtractor{}
		fallback := generic.Extract(text, p.genericRules(det.Type))
		res.Transactions = fallback.Transactions
		res.Columns = fallback.Columns
		res.Warnings = append(res.Warnings, fallback.Warnings...)
		res.Outcomes = append(res.Outcomes, fallback.Outcomes...)
		extractor = generic
	}

	result.Metadata[model.MetaParser] = extractor.Name()
	if len(res.Columns) > 0 {
		result.Metadata[model.MetaColumnsDetected] = res.Columns
	}
	result.Warnings = append(result.Warnings, res.Warnings...)

	if p.observer != nil {
		p.observer.Observe(res.Outcomes)
	}

	if !p.opts.Normalize {
		result.Raw = res.Transactions
		result.Metadata[model.MetaTxnCount] = len(res.Transactions)
		return result, nil
	}

	for _, raw := range res.Transactions {
		txn, err := normalize.Normalize(raw, det.Type)
		if err != nil {
			result.Warnings = append(result.Warnings, err.Error())
			continue
		}
		result.Transactions = append(result.Transactions, txn)
	}

	if p.opts.Deduplicate {
		before := len(result.Transactions)
		result.Transactions = dedupe.Deduplicate(result.Transactions)
		if dropped := before - len(result.Transactions); dropped > 0 {
			p.logger.Debug("removed duplicate transactions", "count", dropped)
		}
	}

	// A statement with nothing extractable is a warning; it only becomes
	// an error when the issuer extractor failed and the generic fallback
	// came up empty too.
	if len(result.Transactions) == 0 {
		if fellBack {
			result.Errors = append(result.Errors, "no transactions could be extracted")
		} else {
			result.Warnings = append(result.Warnings, "no transactions could be extracted")
		}
	}

	result.Metadata[model.MetaTxnCount] = len(result.Transactions)
	if period := statementPeriod(result.Transactions); period != "" {
		result.Metadata[model.MetaStatementPeriod] = period
	}
	return result, nil
}

// chooseExtractor resolves the extractor and rule set for a detection.
// Low-confidence detections and issuers with no registered rules fall
// through to the generic extractor with the type's generic rules.
func (p *Parser) chooseExtractor(det model.DetectionResult) (extract.Extractor, []model.PatternRule) {
	if det.Type == model.StatementUnknown || det.Confidence < FallbackThreshold {
		return &extract.GenericExtractor{}, p.genericRules(det.Type)
	}

	rules := p.registry.RulesFor(det.Type, det.Issuer)
	if det.Issuer == "" || len(rules) == 0 {
		return &extract.GenericExtractor{}, p.genericRules(det.Type)
	}
	return extract.ForDetection(det), rules
}

// genericRules collects the issuerless rules for a type, or for every type
// when the type itself is unknown.
func (p *Parser) genericRules(st model.StatementType) []model.PatternRule {
	if st != model.StatementUnknown {
		return p.registry.RulesFor(st, "")
	}
	var rules []model.PatternRule
	for _, t := range []model.StatementType{model.StatementBank, model.StatementCreditCard, model.StatementUPI} {
		rules = append(rules, p.registry.RulesFor(t, "")...)
	}
	return rules
}

// statementPeriod renders the covered date range from the parsed rows.
func statementPeriod(txns []model.Transaction) string {
	if len(txns) == 0 {
		return ""
	}
	minDate, maxDate := txns[0].Date, txns[0].Date
	for _, t := range txns[1:] {
		if t.Date.Before(minDate) {
			minDate = t.Date
		}
		if t.Date.After(maxDate) {
			maxDate = t.Date
		}
	}
	return normalize.FormatDate(minDate) + " - " + normalize.FormatDate(maxDate)
}
