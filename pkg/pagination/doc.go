// Package pagination drives the single-request executor across all
// server-reported pages of a query, producing one ordered, lazy sequence of
// records.
//
// The World Bank API reports the total record count and page size in every
// response header. The fetcher reads the total from the first page and keeps
// requesting pages until the running read count reaches it. Sequences are
// Go iterators: page N+1 is requested only once the consumer has exhausted
// page N, and abandoning the loop issues no further requests.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(apiClient)
//	for row, err := range fetcher.Fetch(ctx, "country", nil, pagination.Options{}) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(row["id"], row["name"])
//	}
//
// FetchMany composes the URL chunker with the paging loop: a templated query
// whose bound parameter lists would exceed the server's URL length limit is
// expanded into several concrete URLs, fetched one after another, and their
// paginated results concatenated into one stream.
package pagination
