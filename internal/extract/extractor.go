package extract

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/josephmathew0/Monty/internal/domain"
	"github.com/josephmathew0/Monty/internal/logger"
	"github.com/josephmathew0/Monty/internal/metrics"
)

// DocumentReader turns raw document bytes into positioned text.
type DocumentReader interface {
	Read(ctx context.Context, data []byte) (Document, error)
}

// Extractor derives a Profile from a resume document.
type Extractor struct {
	reader DocumentReader
	names  []NameStrategy
	logger *zap.Logger
}

// New creates an extractor. A nil strategies slice uses DefaultNameStrategies.
func New(reader DocumentReader, strategies []NameStrategy, logger *zap.Logger) *Extractor {
	if strategies == nil {
		strategies = DefaultNameStrategies()
	}
	return &Extractor{reader: reader, names: strategies, logger: logger}
}

// Extract reads and analyzes a document. It never fails: any read or analysis
// error yields domain.FailedProfile.
func (e *Extractor) Extract(ctx context.Context, data []byte) domain.Profile {
	start := time.Now()
	defer func() { metrics.ExtractionDuration.Observe(time.Since(start).Seconds()) }()

	doc, err := e.reader.Read(ctx, data)
	if err == nil {
		var p domain.Profile
		if p, err = e.ExtractDocument(doc); err == nil {
			metrics.ExtractionsTotal.WithLabelValues("ok").Inc()
			return p
		}
	}

	logger.FromContextOr(ctx, e.logger).Warn("Resume extraction failed",
		zap.Int("bytes", len(data)),
		zap.Error(err),
	)
	metrics.ExtractionsTotal.WithLabelValues("failed").Inc()
	return domain.FailedProfile()
}

// ExtractDocument applies the field heuristics to an already parsed document.
// Panics inside the heuristics are reported as domain.ErrParseFailure.
func (e *Extractor) ExtractDocument(doc Document) (p domain.Profile, err error) {
	defer func() {
		if r := recover(); r != nil {
			p, err = domain.FailedProfile(), fmt.Errorf("%w: %v", domain.ErrParseFailure, r)
		}
	}()

	if !doc.HasText() {
		return domain.FailedProfile(), fmt.Errorf("%w: document has no text", domain.ErrParseFailure)
	}

	text := doc.Text()
	lower := asciiLower(text)
	lines := dropNoise(splitLines(text))

	p = domain.Profile{
		Name:     domain.NotAvailable,
		Title:    domain.NotAvailable,
		Location: domain.NotAvailable,
	}

	for _, strategy := range e.names {
		if name, ok := strategy(doc, lines); ok {
			p.Name = name
			break
		}
	}

	anchor := p.Name
	if indexOf(lines, anchor) < 0 {
		anchor, _ = properNameLine(lines)
	}
	if title, ok := findTitle(lines, anchor); ok {
		p.Title = title
	}
	if loc, ok := findLocation(lines); ok {
		p.Location = loc
	}

	p.Summary = sectionBetween(text, lower, "summary", "education")
	p.Education = sectionBetween(text, lower, "education", "experience")
	p.Experience = sectionBetween(text, lower, "experience", "skills")
	if p.Experience == "" {
		p.Experience = sectionBetween(text, lower, "experience", "")
	}
	p.Skills = findSkills(lower)

	return p, nil
}
