// Package gramgyan is a Go client for the GramGyan report API.
//
// The client talks to a running gramgyan server over HTTP:
//
//	client, _ := gramgyan.New(
//	    gramgyan.WithBaseURL("http://localhost:8080"),
//	    gramgyan.WithAPIKey(os.Getenv("GRAMGYAN_API_KEY")),
//	)
//	res, err := client.ProcessReport(ctx, gramgyan.Report{
//	    ID:           "r-42",
//	    OriginalText: "मेरी फसल के पत्ते पीले हो रहे हैं",
//	    Type:         gramgyan.TypeQuestion,
//	})
//	if errors.Is(err, gramgyan.ErrTranslation) {
//	    // provider could not normalize the text
//	}
//
// Failures come back as *APIError, which matches the re-exported sentinel
// errors with errors.Is.
package gramgyan
