package workflow

import (
	"time"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

var contingencyNotes = map[model.ContingencyReason]string{
	model.ContingencyAuthorityUnavailable: "No disponibilidad de sistema del MH",
	model.ContingencyIssuerUnavailable:    "No disponibilidad de sistema del emisor",
	model.ContingencyConnectivityFailure:  "Falla en el suministro de servicio de Internet",
	model.ContingencyPowerFailure:         "Falla en el suministro de servicio de energía eléctrica",
	model.ContingencyOther:                "Otro motivo",
}

// ApplyContingency rewrites a document for deferred offline issuance: the
// operation model becomes deferred, the reason code and note are set, and
// the emission timestamp is restamped to the local time of the rewrite.
// The generation code is kept so the ledger and archive still see one
// document.
func ApplyContingency(doc model.Document, reason model.ContingencyReason, now time.Time) model.Document {
	if reason < model.ContingencyAuthorityUnavailable || reason > model.ContingencyOther {
		reason = model.ContingencyOther
	}

	doc.Identification.OperationModel = model.OperationDeferred
	doc.Identification.ContingencyReason = reason
	doc.Identification.ContingencyNote = contingencyNotes[reason]
	doc.Identification.EmittedAt = now
	return doc
}
