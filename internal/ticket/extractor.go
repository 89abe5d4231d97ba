package ticket

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	"lottoledger/internal/rules"
	dErrors "lottoledger/pkg/domain-errors"
)

// lookalikes maps characters OCR commonly confuses for digits to their most
// probable digit. Collapsing here keeps downstream code working on plain
// ints; the ambiguityPenalty keeps the uncertainty visible in the score.
var lookalikes = map[rune]rune{
	'O': '0', 'o': '0', 'D': '0', 'Q': '0',
	'I': '1', 'l': '1', '|': '1',
	'Z': '2', 'z': '2',
	'A': '4',
	'S': '5', 's': '5',
	'G': '6', 'b': '6',
	'T': '7',
	'B': '8',
	'g': '9', 'q': '9',
}

// ambiguityPenalty is applied per collapsed character.
const ambiguityPenalty = 0.8

// Characters the OCR itself flagged below this confidence discount the read
// proportionally.
const lowCharConfThreshold = 0.6

// Extractor turns OCR output into ticket candidates, validated against the
// rule registry. Stateless and safe for concurrent use.
type Extractor struct {
	rules *rules.Registry
}

func NewExtractor(reg *rules.Registry) *Extractor {
	return &Extractor{rules: reg}
}

// Extract reshapes one OCR output into a ticket candidate. It fails with an
// unreadable_ticket error when no panel recovers at least the minimum number
// count required by any known game.
func (e *Extractor) Extract(ocr OCROutput) (TicketCandidate, error) {
	minNeeded := e.rules.MinRecoverable()
	rule, ruleKnown := rules.GameRule{}, false
	if r, err := e.rules.RuleFor(ocr.GameGuess); err == nil {
		rule, ruleKnown = r, true
		minNeeded = r.MainCount
	}

	cand := TicketCandidate{
		ID:          uuid.New(),
		Game:        ocr.GameGuess,
		DrawRefText: strings.TrimSpace(ocr.DrawRefText),
		Confidence:  1.0,
	}

	readable := false
	for _, ocrPanel := range ocr.Panels {
		panel := Panel{Confidence: 1.0}
		seen := make(map[int]struct{})

		for _, read := range ocrPanel.Numbers {
			num, conf, ok := collapseRead(read)
			if !ok {
				panel.Confidence *= ambiguityPenalty
				continue
			}
			if ruleKnown && !rule.InMainRange(num) {
				// Out-of-range reads are dropped here, before matching; the
				// verdict then reflects the recoverable numbers only.
				panel.Confidence *= ambiguityPenalty
				continue
			}
			if _, dup := seen[num]; dup {
				panel.Confidence *= ambiguityPenalty
				continue
			}
			seen[num] = struct{}{}
			panel.Numbers = append(panel.Numbers, num)
			panel.Confidence *= conf
		}

		for _, read := range ocrPanel.Bonus {
			num, conf, ok := collapseRead(read)
			if !ok || (ruleKnown && !rule.InBonusRange(num)) {
				panel.Confidence *= ambiguityPenalty
				continue
			}
			panel.Bonus = append(panel.Bonus, num)
			panel.Confidence *= conf
		}

		if len(panel.Numbers) >= minNeeded {
			readable = true
		}
		cand.Panels = append(cand.Panels, panel)
		if panel.Confidence < cand.Confidence {
			cand.Confidence = panel.Confidence
		}
	}

	if !readable {
		return TicketCandidate{}, dErrors.Newf(dErrors.CodeUnreadableTicket,
			"no panel recovered the %d numbers required", minNeeded)
	}
	return cand, nil
}

// collapseRead resolves one digit group to an int, substituting lookalike
// characters for their most probable digit. The returned confidence starts
// at 1.0 and is discounted for every collapsed or low-confidence character.
func collapseRead(read OCRRead) (int, float64, bool) {
	conf := 1.0
	var b strings.Builder
	for i, r := range read.Text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if digit, ok := lookalikes[r]; ok {
			b.WriteRune(digit)
			conf *= ambiguityPenalty
		} else if r == ' ' {
			continue
		} else {
			return 0, 0, false
		}
		if i < len(read.CharConf) && read.CharConf[i] < lowCharConfThreshold {
			conf *= read.CharConf[i] / lowCharConfThreshold
		}
	}
	if b.Len() == 0 {
		return 0, 0, false
	}
	num, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, 0, false
	}
	return num, conf, true
}
