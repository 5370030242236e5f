package validation

import (
	"fmt"
	"regexp"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/money"
)

var (
	controlNumberPattern  = regexp.MustCompile(`^DTE-\d{2}-[A-Z0-9]{8}-\d{15}$`)
	generationCodePattern = regexp.MustCompile(`^[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}$`)
	taxIDPattern          = regexp.MustCompile(`^(\d{9}|\d{14})$`)
)

// fieldCheck is one structural requirement. ok returns true when the
// document satisfies it.
type fieldCheck struct {
	field string
	desc  string
	ok    func(model.Document) bool
}

// Schema is the set of structural checks for one document type.
type Schema struct {
	docType model.DocumentType
	checks  []fieldCheck
}

// Validate reports one blocking violation per unsatisfied check.
func (s Schema) Validate(doc model.Document) []model.Violation {
	var out []model.Violation
	for _, c := range s.checks {
		if !c.ok(doc) {
			out = append(out, model.Violation{
				Code:        codeFor(c.field),
				Field:       c.field,
				Description: c.desc,
				Severity:    model.SeverityBlocking,
			})
		}
	}
	return out
}

// codeFor maps a field path to its violation code family. Pattern and
// scale checks register under dedicated codes so callers can group them.
func codeFor(field string) string {
	switch field {
	case "identificacion.numeroControl", "identificacion.codigoGeneracion", "emisor.nit":
		return model.CodePatternMismatch
	case "resumen.scale", "cuerpoDocumento.scale":
		return model.CodeNumericScale
	}
	return model.CodeRequiredField
}

// baseChecks apply to every document type.
func baseChecks() []fieldCheck {
	return []fieldCheck{
		{
			field: "identificacion.version",
			desc:  "schema version is required",
			ok:    func(d model.Document) bool { return d.Identification.Version > 0 },
		},
		{
			field: "identificacion.numeroControl",
			desc:  "control number must match DTE-tt-AAAAAAAA-NNNNNNNNNNNNNNN",
			ok: func(d model.Document) bool {
				return controlNumberPattern.MatchString(d.Identification.ControlNumber)
			},
		},
		{
			field: "identificacion.codigoGeneracion",
			desc:  "generation code must be an uppercase UUID",
			ok: func(d model.Document) bool {
				return generationCodePattern.MatchString(d.Identification.GenerationCode)
			},
		},
		{
			field: "identificacion.fecEmi",
			desc:  "emission date is required",
			ok:    func(d model.Document) bool { return !d.Identification.EmittedAt.IsZero() },
		},
		{
			field: "identificacion.tipoContingencia",
			desc:  "contingency reason is required for deferred operation",
			ok: func(d model.Document) bool {
				if d.Identification.OperationModel != model.OperationDeferred {
					return true
				}
				r := d.Identification.ContingencyReason
				return r >= model.ContingencyAuthorityUnavailable && r <= model.ContingencyOther
			},
		},
		{
			field: "emisor.nit",
			desc:  "issuer tax identifier must be 9 or 14 digits",
			ok:    func(d model.Document) bool { return taxIDPattern.MatchString(d.Issuer.TaxID) },
		},
		{
			field: "emisor.nrc",
			desc:  "issuer registration number is required",
			ok:    func(d model.Document) bool { return d.Issuer.Registration != "" },
		},
		{
			field: "emisor.nombre",
			desc:  "issuer legal name is required",
			ok:    func(d model.Document) bool { return d.Issuer.Name != "" },
		},
		{
			field: "emisor.codActividad",
			desc:  "issuer economic activity code is required",
			ok:    func(d model.Document) bool { return d.Issuer.ActivityCode != "" },
		},
		{
			field: "emisor.direccion.departamento",
			desc:  "issuer address department is required",
			ok:    func(d model.Document) bool { return d.Issuer.Address.Department != "" },
		},
		{
			field: "emisor.direccion.municipio",
			desc:  "issuer address municipality is required",
			ok:    func(d model.Document) bool { return d.Issuer.Address.Municipality != "" },
		},
		{
			field: "cuerpoDocumento",
			desc:  "at least one line item is required",
			ok:    func(d model.Document) bool { return len(d.Items) > 0 },
		},
		{
			field: "resumen.totalLetras",
			desc:  "amount in words is required",
			ok:    func(d model.Document) bool { return d.Summary.AmountInWords != "" },
		},
		{
			field: "resumen.montoTotalOperacion",
			desc:  "grand total must be non-negative",
			ok:    func(d model.Document) bool { return money.IsNonNegative(d.Summary.GrandTotal) },
		},
		{
			field: "resumen.scale",
			desc:  "summary amounts must carry at most 2 decimal places",
			ok: func(d model.Document) bool {
				vals := []bool{
					money.IsQuantized(d.Summary.TotalTaxed, money.SummaryScale),
					money.IsQuantized(d.Summary.TotalExempt, money.SummaryScale),
					money.IsQuantized(d.Summary.TotalNotSubject, money.SummaryScale),
					money.IsQuantized(d.Summary.TotalDiscount, money.SummaryScale),
					money.IsQuantized(d.Summary.GrandTotal, money.SummaryScale),
				}
				for _, ok := range vals {
					if !ok {
						return false
					}
				}
				for _, t := range d.Summary.Taxes {
					if !money.IsQuantized(t.Amount, money.SummaryScale) {
						return false
					}
				}
				return true
			},
		},
		{
			field: "cuerpoDocumento.scale",
			desc:  "line amounts must carry at most 8 decimal places",
			ok: func(d model.Document) bool {
				for _, it := range d.Items {
					quantized := money.IsQuantized(it.Quantity, money.LineScale) &&
						money.IsQuantized(it.UnitPrice, money.LineScale) &&
						money.IsQuantized(it.Discount, money.LineScale) &&
						money.IsQuantized(it.Taxed, money.LineScale) &&
						money.IsQuantized(it.Exempt, money.LineScale) &&
						money.IsQuantized(it.NotSubject, money.LineScale)
					if !quantized {
						return false
					}
				}
				return true
			},
		},
	}
}

func requireRecipient(desc string) fieldCheck {
	return fieldCheck{
		field: "receptor",
		desc:  desc,
		ok:    func(d model.Document) bool { return d.Recipient != nil },
	}
}

// SchemaFor selects the structural rule set for a document type. Unknown
// types fall back to the generic superset of per-type requirements.
func SchemaFor(t model.DocumentType) Schema {
	checks := baseChecks()

	switch t {
	case model.TypeConsumerInvoice:
		// Recipient presence is governed by the monetary threshold rule.
	case model.TypeTaxCreditVoucher:
		checks = append(checks,
			requireRecipient("recipient is required for a tax-credit voucher"),
			fieldCheck{
				field: "receptor.nrc",
				desc:  "recipient registration number is required for a tax-credit voucher",
				ok: func(d model.Document) bool {
					return d.Recipient != nil && d.Recipient.Registration != ""
				},
			},
			fieldCheck{
				field: "receptor.nombre",
				desc:  "recipient legal name is required for a tax-credit voucher",
				ok: func(d model.Document) bool {
					return d.Recipient != nil && d.Recipient.Name != ""
				},
			},
		)
	case model.TypeCreditNote, model.TypeDebitNote, model.TypeWithholdingReceipt, model.TypeLiquidationVoucher:
		checks = append(checks,
			requireRecipient(fmt.Sprintf("recipient is required for document type %s", t)),
			fieldCheck{
				field: "receptor.numDocumento",
				desc:  fmt.Sprintf("recipient identifier is required for document type %s", t),
				ok:    func(d model.Document) bool { return d.Recipient.Identified() },
			},
		)
	case model.TypeExportInvoice:
		checks = append(checks, fieldCheck{
			field: "receptor.nombre",
			desc:  "foreign recipient name is required for an export invoice",
			ok: func(d model.Document) bool {
				return d.Recipient != nil && d.Recipient.Name != ""
			},
		})
	case model.TypeExcludedSubjectInvoice, model.TypeRemissionNote, model.TypeDonationReceipt:
		checks = append(checks, requireRecipient(fmt.Sprintf("recipient is required for document type %s", t)))
	default:
		// Generic superset for unknown types: everything a recipient-bearing
		// type would need, so nothing slips through unvalidated.
		checks = append(checks, requireRecipient("recipient is required"))
	}

	return Schema{docType: t, checks: checks}
}
