// Package beans provides a Go client for the better-beans coffee discovery
// API, a JSON-RPC 2.0 service for flavor-similarity search over roaster
// catalogs.
//
//	client, _ := beans.New("https://api.betterbeans.example",
//	    beans.WithAPIKey(os.Getenv("BEANS_API_KEY")),
//	)
//	set, _ := client.SimilaritySearch(ctx, beans.SimilarityQuery{
//	    FlavorTags: []string{"chocolate", "cherry"},
//	    MaxResults: 5,
//	})
//	for _, m := range set.Matches {
//	    fmt.Println(m.Name, m.Similarity)
//	}
//
// Streaming delivery of the same search is available through
// SimilaritySearchStream, which invokes a callback per batch.
package beans
