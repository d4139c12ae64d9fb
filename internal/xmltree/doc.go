// Package xmltree implements the minimal XML tree model used for UPnP
// description documents and SOAP envelopes.
//
// This is deliberately not a conforming XML parser. UPnP renderers produce a
// narrow dialect (no namespaces to resolve, no CDATA, no comments, attributes
// that never matter) and the devices themselves are often sloppy about the
// rest, so the parser implements exactly the subset the protocol needs and
// nothing more. The upside is that it tolerates the half-HTTP half-XML blobs
// devices actually send; the known downside is that closing tags are matched
// textually rather than with a stack, so a tag nested directly inside itself
// (<a><a></a></a>) parses incorrectly. Description documents and SOAP
// responses never have that shape.
//
// # Tree Model
//
// A parsed document is a Tree: a map from tag name to the ordered children
// seen under that tag. Each child is a Value, which is either leaf text or a
// nested Tree. Repeated sibling tags (serviceList/service) accumulate in
// document order under one key. A tag that appears with no content at all is
// present with an empty child slice, never absent.
//
// # Quirks Preserved On Purpose
//
// A self-closing element (<tag/> or <tag />) parses as a single leaf child
// with the literal text "None". Downstream code matches on that sentinel, so
// it is kept even though an empty child list would be cleaner.
//
// # Path Queries
//
// Query walks a Tree with a slash-separated path. A segment is either a tag
// name or tag@child=value, which selects the first subtree under tag whose
// child key holds exactly the one-element leaf list [value]:
//
//	v, ok := xmltree.Query(tree,
//	    "root/device/serviceList/service@serviceType=urn:...:AVTransport:1/controlURL")
//
// Lookups never fail structurally; an absent segment or unmatched predicate
// simply reports not found.
package xmltree
