// Package dashboard wires the form controllers into the product and
// collection update pages: an attribute formset, the scalar form values,
// the collection picker and the save bar's confirm button.
//
// A page is created from a catalog record, edited through change events and
// saved with Submit, which maps store user errors back onto form fields and
// drives the confirm button through loading and success or error.
package dashboard
