package dsl

import (
	"fmt"

	jsonapi "github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/hypermedia"
	"github.com/reoring/jsonapi/internal/dom"
	"github.com/reoring/jsonapi/servicemodel"
)

// WriteDocument renders the declared tree into an immutable document. Open
// scopes are contract violations; every other failure (identification,
// conversion, link resolution, structural validation) is collected and
// returned as jsonapi.Issues, and no document is produced. On success the
// builder is spent and further operations panic.
func (b *Builder) WriteDocument() (*jsonapi.Document, error) {
	if b.c.written {
		contract("WriteDocument", "document already written")
	}
	if len(b.c.stack) > 1 {
		contract("WriteDocument", "unclosed %s scope", b.c.top().kind)
	}
	r := &renderer{c: b.c, doc: b.c.doc, arena: map[string]*jsonapi.Resource{}}
	out, err := r.render()
	if err != nil {
		return nil, err
	}
	b.c.written = true
	return out, nil
}

// MustWriteDocument is WriteDocument, panicking on failure. Intended for
// variable initialization and tests.
func (b *Builder) MustWriteDocument() *jsonapi.Document {
	doc, err := b.WriteDocument()
	if err != nil {
		panic(err)
	}
	return doc
}

type renderer struct {
	c   *core
	doc *dom.Document
	iss jsonapi.Issues

	// arena holds every rendered resource by (type, id) key; primaries and
	// included targets alike, so linkage back-fill reaches both.
	arena    map[string]*jsonapi.Resource
	primary  []*jsonapi.Resource
	included []string // arena keys in first-seen order
}

func (r *renderer) fail(path, code, msg string, cause error) {
	r.iss = jsonapi.AppendIssues(r.iss, jsonapi.Issue{Path: path, Code: code, Message: msg, Cause: cause})
}

// failErr merges err under path, re-rooting issue paths that carry none.
func (r *renderer) failErr(path string, err error) {
	if iss, ok := jsonapi.AsIssues(err); ok {
		for _, is := range iss {
			if is.Path == "" || is.Path == "/" {
				is.Path = path
			}
			r.iss = jsonapi.AppendIssues(r.iss, is)
		}
		return
	}
	r.fail(path, jsonapi.CodeHypermediaResolution, err.Error(), err)
}

func (r *renderer) render() (*jsonapi.Document, error) {
	out := r.renderPrimary()
	r.resolveLinkages()
	r.finishPrimary(out)
	for _, key := range r.included {
		out.Included = append(out.Included, *r.arena[key])
	}
	out.Meta = r.doc.Meta
	if r.doc.Version != "" {
		out.JSONAPI = &jsonapi.Version{Version: r.doc.Version}
	}
	r.renderDocumentLinks(out)
	if err := out.Validate(); err != nil {
		r.failErr("/", err)
	}
	if len(r.iss) > 0 {
		return nil, r.iss
	}
	r.c.log.Debug().
		Stringer("kind", out.Kind()).
		Int("included", len(out.Included)).
		Msg("document rendered")
	return out, nil
}

// renderPrimary renders the primary data into the arena and picks the output
// document variant. Collections are attached in finishPrimary, after linkage
// back-fill has mutated the arena resources.
func (r *renderer) renderPrimary() *jsonapi.Document {
	doc := r.doc
	switch doc.Kind {
	case dom.DataUnset:
		return jsonapi.GenericDocument()
	case dom.DataErrors:
		return jsonapi.NewErrorsDocument(doc.Errors...)
	case dom.DataResource:
		obj := doc.Primary.Objs[0]
		if obj == nil {
			return jsonapi.NullDocument()
		}
		res := r.renderResource(obj, &doc.Primary.Spec, "/data", 0, 1)
		if res != nil {
			r.primary = append(r.primary, res)
		}
		return jsonapi.NewResourceDocument(res)
	case dom.DataCollection:
		count := len(doc.Primary.Objs)
		for i, obj := range doc.Primary.Objs {
			if obj == nil {
				r.fail(fmt.Sprintf("/data/%d", i), jsonapi.CodeInvalidDocument, "nil object in resource collection", nil)
				continue
			}
			if res := r.renderResource(obj, &doc.Primary.Spec, fmt.Sprintf("/data/%d", i), i, count); res != nil {
				r.primary = append(r.primary, res)
			}
		}
		return jsonapi.NewResourceCollectionDocument(nil)
	case dom.DataIdentifier:
		if doc.IdentifierObj == nil {
			return jsonapi.NewResourceIdentifierDocument(nil)
		}
		id, ok := r.identify(doc.IdentifierObj, "/data")
		if !ok {
			return jsonapi.NewResourceIdentifierDocument(nil)
		}
		return jsonapi.NewResourceIdentifierDocument(&id)
	case dom.DataIdentifierCollection:
		ids := []jsonapi.ResourceIdentifier{}
		for i, obj := range doc.IdentifierObjs {
			if id, ok := r.identify(obj, fmt.Sprintf("/data/%d", i)); ok {
				ids = append(ids, id)
			}
		}
		return jsonapi.NewResourceIdentifierCollectionDocument(ids)
	default:
		panic(jsonapi.NewContractError("WriteDocument", "unknown data kind %d", int(doc.Kind)))
	}
}

// finishPrimary attaches collection values once back-fill is complete.
func (r *renderer) finishPrimary(out *jsonapi.Document) {
	if r.doc.Kind != dom.DataCollection {
		return
	}
	rs := make([]jsonapi.Resource, 0, len(r.primary))
	for _, res := range r.primary {
		rs = append(rs, *res)
	}
	*out = *jsonapi.NewResourceCollectionDocument(rs)
}

func (r *renderer) identify(obj any, path string) (jsonapi.ResourceIdentifier, bool) {
	typ, id, err := r.c.hctx.Identify(obj)
	if err != nil {
		r.failErr(path, err)
		return jsonapi.ResourceIdentifier{}, false
	}
	return jsonapi.Identifier(typ, id), true
}

// renderResource renders one domain object under spec. idx and count locate
// the object within its scope for positional declarations.
func (r *renderer) renderResource(obj any, spec *dom.ResourceSpec, path string, idx, count int) *jsonapi.Resource {
	identity, ok := r.identify(obj, path)
	if !ok {
		return nil
	}
	if prev, seen := r.arena[identity.Key()]; seen {
		return prev
	}
	rt, err := r.c.hctx.Model().TypeOf(obj)
	if err != nil {
		r.failErr(path, err)
		return nil
	}
	res := &jsonapi.Resource{Type: identity.Type, ID: identity.ID}
	res.Attributes = r.renderAttributes(obj, rt, path)
	res.Meta = r.pickMeta(spec.Meta, spec.MetaList, path, idx, count)
	res.Links = r.renderLinks(spec.Links, path, idx, count, func(rel string) (string, bool) {
		return r.resourceLink(obj, rel, spec.Path, path)
	}, obj, true)
	for i := range spec.Rels {
		r.renderRelationship(res, obj, rt, &spec.Rels[i], spec.Path, path, idx, count)
	}
	r.arena[identity.Key()] = res
	return res
}

func (r *renderer) renderAttributes(obj any, rt *servicemodel.ResourceType, path string) *jsonapi.Obj {
	if len(rt.Attributes) == 0 {
		return nil
	}
	attrs := jsonapi.NewObj()
	for _, attr := range rt.Attributes {
		apath := path + "/attributes/" + attr.Name
		raw, err := rt.AttributeValue(obj, attr)
		if err != nil {
			r.fail(apath, jsonapi.CodeConversionFailure, err.Error(), err)
			continue
		}
		if attr.Format != "" && raw != nil {
			raw, err = r.c.conv.Convert(raw, attr.Format)
			if err != nil {
				r.fail(apath, jsonapi.CodeConversionFailure,
					fmt.Sprintf("cannot render %q as %s: %v", attr.Name, attr.Format, err), err)
				continue
			}
		}
		val, err := jsonapi.ValueOf(raw, r.c.conv)
		if err != nil {
			r.failErr(apath, err)
			continue
		}
		attrs.Set(attr.Name, val)
	}
	return attrs
}

func (r *renderer) pickMeta(uniform jsonapi.Meta, list []jsonapi.Meta, path string, idx, count int) jsonapi.Meta {
	if list == nil {
		return uniform
	}
	if len(list) != count {
		r.fail(path, jsonapi.CodeInvalidDocument,
			fmt.Sprintf("positional meta count %d does not match resource count %d", len(list), count), nil)
		return uniform
	}
	return list[idx]
}

// renderLinks materializes link specs. compute resolves a computed relation
// to an href; autoCanonical emits a canonical entry after a computed self
// when the two differ and canonical is not separately declared.
func (r *renderer) renderLinks(specs []dom.LinkSpec, path string, idx, count int, compute func(rel string) (string, bool), obj any, autoCanonical bool) *jsonapi.Links {
	if len(specs) == 0 {
		return nil
	}
	links := jsonapi.NewLinks()
	declared := map[string]bool{}
	for _, ls := range specs {
		declared[ls.Rel] = true
	}
	for _, ls := range specs {
		if ls.Pred != nil && !ls.Pred(obj) {
			continue
		}
		lpath := path + "/links/" + ls.Rel
		switch ls.Mode {
		case dom.LinkExplicit:
			links.Set(ls.Rel, ls.Link)
		case dom.LinkPositional:
			if len(ls.List) != count {
				r.fail(lpath, jsonapi.CodeInvalidDocument,
					fmt.Sprintf("positional link count %d does not match resource count %d", len(ls.List), count), nil)
				continue
			}
			links.Set(ls.Rel, ls.List[idx])
		case dom.LinkComputed:
			href, ok := compute(ls.Rel)
			if !ok {
				continue
			}
			links.SetHref(ls.Rel, href)
			if autoCanonical && ls.Rel == jsonapi.KeySelf && !declared[jsonapi.KeyCanonical] {
				if canonical, ok := compute(jsonapi.KeyCanonical); ok && canonical != href {
					links.SetHref(jsonapi.KeyCanonical, canonical)
				}
			}
		}
	}
	if links.Len() == 0 {
		return nil
	}
	return links
}

func (r *renderer) resourceLink(obj any, rel string, p hypermedia.Path, path string) (string, bool) {
	var href string
	var err error
	switch rel {
	case jsonapi.KeySelf:
		href, err = r.c.hctx.SelfLink(obj, p)
	case jsonapi.KeyCanonical:
		href, err = r.c.hctx.CanonicalLink(obj)
	default:
		r.fail(path+"/links/"+rel, jsonapi.CodeHypermediaResolution,
			fmt.Sprintf("cannot compute link %q for a resource", rel), nil)
		return "", false
	}
	if err != nil {
		r.failErr(path+"/links/"+rel, err)
		return "", false
	}
	return href, true
}

func (r *renderer) renderRelationship(res *jsonapi.Resource, obj any, rt *servicemodel.ResourceType, spec *dom.RelationshipSpec, p hypermedia.Path, path string, idx, count int) {
	if spec.Pred != nil && !spec.Pred(obj) {
		return
	}
	rpath := path + "/relationships/" + spec.Name
	if _, ok := rt.Relationship(spec.Name); !ok {
		r.fail(rpath, jsonapi.CodeUnknownRelationship,
			fmt.Sprintf("no relationship %q on %s", spec.Name, rt.Name), nil)
		return
	}
	var rel jsonapi.Relationship
	rel.Links = r.renderLinks(spec.Links, rpath, idx, count, func(lr string) (string, bool) {
		return r.relationshipLink(obj, spec.Name, lr, p, rpath)
	}, obj, false)
	rel.Meta = r.pickMeta(spec.Meta, spec.MetaList, rpath, idx, count)
	if d := spec.Data; d != nil {
		switch {
		case d.Many:
			rel.SetMany(d.List)
		case d.One != nil:
			rel.SetOne(*d.One)
		default:
			rel.SetNull()
		}
	}
	if res.Relationships == nil {
		res.Relationships = jsonapi.NewRelationships()
	}
	res.Relationships.Set(spec.Name, rel)
}

func (r *renderer) relationshipLink(owner any, name, rel string, p hypermedia.Path, rpath string) (string, bool) {
	var href string
	var err error
	switch rel {
	case jsonapi.KeySelf:
		href, err = r.c.hctx.RelationshipSelfLink(owner, name, p)
	case jsonapi.KeyRelated:
		href, err = r.c.hctx.RelationshipRelatedLink(owner, name, p)
	default:
		r.fail(rpath+"/links/"+rel, jsonapi.CodeHypermediaResolution,
			fmt.Sprintf("cannot compute link %q for a relationship", rel), nil)
		return "", false
	}
	if err != nil {
		r.failErr(rpath+"/links/"+rel, err)
		return "", false
	}
	return href, true
}

// resolveLinkages walks the linkage registry in registration order: each
// entry back-fills the owner's relationship data with target identities and,
// for included linkages, renders first-seen targets into the included set.
// Re-registered (type, id) targets keep their first rendering.
func (r *renderer) resolveLinkages() {
	for n, lk := range r.doc.Linkages {
		path := fmt.Sprintf("/included/%d", n)
		identity, ok := r.identify(lk.Owner, path)
		if !ok {
			continue
		}
		owner, ok := r.arena[identity.Key()]
		if !ok {
			r.fail(path, jsonapi.CodeHypermediaResolution,
				fmt.Sprintf("linkage owner %s %q is not part of the document", identity.Type, identity.ID), nil)
			continue
		}
		ownerType, err := r.c.hctx.Model().TypeOf(lk.Owner)
		if err != nil {
			r.failErr(path, err)
			continue
		}
		mrel, ok := ownerType.Relationship(lk.Rel)
		if !ok {
			r.fail(path, jsonapi.CodeUnknownRelationship,
				fmt.Sprintf("no relationship %q on %s", lk.Rel, ownerType.Name), nil)
			continue
		}
		if lk.Many != (mrel.Cardinality == servicemodel.ToMany) {
			r.fail(path, jsonapi.CodeInvalidDocument,
				fmt.Sprintf("linkage cardinality does not match %s relationship %q", mrel.Cardinality, lk.Rel), nil)
			continue
		}
		r.backfill(owner, lk, path)
	}
}

func (r *renderer) backfill(owner *jsonapi.Resource, lk *dom.Linkage, path string) {
	if owner.Relationships == nil {
		owner.Relationships = jsonapi.NewRelationships()
	}
	rel, _ := owner.Relationships.Get(lk.Rel)
	if lk.Many {
		ids := make([]jsonapi.ResourceIdentifier, 0, len(lk.Targets))
		for i, target := range lk.Targets {
			id, ok := r.includeTarget(target, lk, fmt.Sprintf("%s/%d", path, i), i, len(lk.Targets))
			if !ok {
				continue
			}
			ids = append(ids, id)
		}
		if rel.HasData() && rel.IsMany() {
			rel.AppendMany(ids...)
		} else {
			rel.SetMany(ids)
		}
	} else if lk.One == nil {
		rel.SetNull()
	} else {
		id, ok := r.includeTarget(lk.One, lk, path, 0, 1)
		if !ok {
			return
		}
		rel.SetOne(id)
	}
	owner.Relationships.Set(lk.Rel, rel)
}

// includeTarget resolves a target identity and, for included linkages,
// renders it into the included set on first sight.
func (r *renderer) includeTarget(target any, lk *dom.Linkage, path string, idx, count int) (jsonapi.ResourceIdentifier, bool) {
	identity, ok := r.identify(target, path)
	if !ok {
		return jsonapi.ResourceIdentifier{}, false
	}
	if !lk.Include {
		return identity, true
	}
	if _, seen := r.arena[identity.Key()]; !seen {
		if res := r.renderResource(target, &lk.Spec, path, idx, count); res != nil {
			r.included = append(r.included, identity.Key())
		}
	}
	return identity, true
}

// renderDocumentLinks resolves the document-level links scope. Only a
// single-resource document has a computable self and canonical; a collection
// self resolves to the canonical collection URL of its resource type.
func (r *renderer) renderDocumentLinks(out *jsonapi.Document) {
	if len(r.doc.Links) == 0 {
		return
	}
	var primaryObj any
	if r.doc.Kind == dom.DataResource {
		primaryObj = r.doc.Primary.Objs[0]
	}
	out.Links = r.renderLinks(r.doc.Links, "", 0, 1, func(rel string) (string, bool) {
		return r.documentLink(rel, primaryObj)
	}, primaryObj, primaryObj != nil)
}

func (r *renderer) documentLink(rel string, primaryObj any) (string, bool) {
	lpath := "/links/" + rel
	var href string
	var err error
	switch {
	case rel == jsonapi.KeySelf && primaryObj != nil:
		href, err = r.c.hctx.SelfLink(primaryObj, r.doc.Primary.Spec.Path)
	case rel == jsonapi.KeyCanonical && primaryObj != nil:
		href, err = r.c.hctx.CanonicalLink(primaryObj)
	case rel == jsonapi.KeySelf && r.doc.Kind == dom.DataCollection && len(r.doc.Primary.Objs) > 0:
		var typ string
		typ, _, err = r.c.hctx.Identify(r.doc.Primary.Objs[0])
		if err == nil {
			href, err = r.c.hctx.CollectionLink(typ)
		}
	default:
		r.fail(lpath, jsonapi.CodeHypermediaResolution,
			fmt.Sprintf("cannot compute document link %q for this document", rel), nil)
		return "", false
	}
	if err != nil {
		r.failErr(lpath, err)
		return "", false
	}
	return href, true
}
