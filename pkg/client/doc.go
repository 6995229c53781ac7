// Package client provides a Go SDK for the label extraction service.
//
// The service accepts a PDF product specification and answers with the
// allergens and nutrition values it found, plus a short preview of the text
// it extracted. This package owns the single HTTP call that carries a
// document there; it does not interpret the result beyond telling the two
// result shapes apart.
//
// # Quick Start
//
//	c := client.New(client.WithBaseURL("http://localhost:8000"))
//	file, err := types.LoadFile("sample.pdf")
//	res, err := c.Submit(ctx, file)
//
// # Results
//
// Submit returns a types.Result, which is either a *types.Ok or a
// *types.ServiceError. A ServiceError means the call succeeded but the
// service could not structure the document:
//
//	switch r := res.(type) {
//	case *types.Ok:
//	    fmt.Println(r.Allergens.Names())
//	case *types.ServiceError:
//	    fmt.Println(r.Raw)
//	}
//
// # Failures
//
// Every error from Submit is a *TransportFailure. Non-2xx responses wrap an
// *APIError carrying the status code and the service's message:
//
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
//	    // not a PDF
//	}
//
// Submit never retries and sets no timeout of its own; configure one on the
// http.Client passed with WithHTTPClient if needed.
package client
