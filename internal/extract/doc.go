// Package extract turns fetched HTML into the fields the crawler stores on a
// page: title, plain text, outbound links, images and meta tags.
//
// Links and images are resolved against the page URL (or its <base href>),
// so every URL handed to the crawler is absolute. Extraction is a pure
// function of the content and the base URL.
//
// # Usage
//
//	ex := extract.NewHTMLExtractor()
//	doc, err := ex.Extract(body, "https://example.com/")
package extract
