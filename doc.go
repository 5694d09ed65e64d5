// opk is the Order Pipeline Kit. It contains the pieces of a small
// enrichment pipeline for retail order data, and reference
// implementations of each piece.
//
// The pipeline is a single pass over three bounded datasets:
//
// 1. Source
//
//    An opk.Source is at the beginning of the journey. Customer,
//    product, and order data lives in many places - local files, S3
//    buckets, Kafka topics, hard-coded in tests. Different Sources know
//    how to interact with the various systems holding the data and get
//    it out one record at a time behind one convenient interface. A
//    Source does not manipulate the data in any way; it returns
//    whatever map-shaped record falls naturally out of the underlying
//    format, and the typed decoders in this package turn those into
//    Customers, Products, and Orders.
//
// 2. Enricher
//
//    The enrich package joins orders against customers and products on
//    their foreign keys, computes the derived order and discount
//    amounts, classifies each customer into a tier from their credit,
//    and attaches a sentiment score for the order remarks obtained from
//    a remote scoring service. The classifier and scorer are plain
//    functions injected into the enricher, so tests can substitute
//    either without any network.
//
// 3. Sink
//
//    The parquet package writes the enriched rows out as a columnar
//    file, and the catalog package registers the result under a table
//    name so later consumers can find it.
//
// The cmd directory wires all of this into the opk command line tool.
package opk
