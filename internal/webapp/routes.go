package webapp

import (
	"strconv"
	"strings"
)

// Page identifies a page of the web client.
type Page string

const (
	PageHome              Page = "home"
	PageProfile           Page = "profile"
	PageProfileEdit       Page = "profile_edit"
	PageServices          Page = "services"
	PageAdmin             Page = "admin"
	PageInstanceSettings  Page = "instance_settings"
	PageInstanceAnalytics Page = "instance_analytics"
	PageInstanceSetup     Page = "instance_setup"
	PageNotFound          Page = "not_found"
)

// Params holds the typed path parameters of a matched route. A nil pointer
// means the parameter was absent (e.g. /profile without an id defaults to the
// current user).
type Params struct {
	ProfileID  *int64
	InstanceID *int64
}

// Match is the result of resolving a URL path against the route table.
type Match struct {
	Page   Page
	Params Params
}

// paramKind says which Params field a captured segment feeds.
type paramKind int

const (
	paramProfileID paramKind = iota
	paramInstanceID
)

type segment struct {
	literal  string
	isParam  bool
	kind     paramKind
	optional bool
}

func lit(s string) segment         { return segment{literal: s} }
func param(k paramKind) segment    { return segment{isParam: true, kind: k} }
func optParam(k paramKind) segment { return segment{isParam: true, kind: k, optional: true} }

type route struct {
	page     Page
	segments []segment
}

// routeTable declares every page's path pattern with its typed parameters.
// Order matters: the first matching route wins.
var routeTable = []route{
	{PageHome, []segment{}},
	{PageProfileEdit, []segment{lit("profile"), optParam(paramProfileID), lit("edit")}},
	{PageProfile, []segment{lit("profile"), optParam(paramProfileID)}},
	{PageServices, []segment{lit("services")}},
	{PageInstanceSettings, []segment{lit("admin"), lit("instances"), param(paramInstanceID), lit("settings")}},
	{PageInstanceAnalytics, []segment{lit("admin"), lit("instances"), param(paramInstanceID), lit("analytics")}},
	{PageAdmin, []segment{lit("admin")}},
	{PageInstanceSetup, []segment{lit("instance-setup")}},
}

// MatchPath resolves a URL path to a page and its typed parameters. Paths
// that fit no pattern resolve to the not-found page.
func MatchPath(path string) Match {
	parts := splitPath(path)

	for _, rt := range routeTable {
		if params, ok := matchRoute(rt, parts); ok {
			return Match{Page: rt.page, Params: params}
		}
	}
	return Match{Page: PageNotFound}
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func matchRoute(rt route, parts []string) (Params, bool) {
	var params Params

	pi := 0
	for _, seg := range rt.segments {
		if pi >= len(parts) {
			if seg.optional {
				continue
			}
			return Params{}, false
		}

		part := parts[pi]
		if !seg.isParam {
			if part != seg.literal {
				return Params{}, false
			}
			pi++
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			if seg.optional {
				// Absent optional param: the segment belongs to a later
				// literal (e.g. /profile/edit).
				continue
			}
			return Params{}, false
		}
		switch seg.kind {
		case paramProfileID:
			params.ProfileID = &id
		case paramInstanceID:
			params.InstanceID = &id
		}
		pi++
	}

	if pi != len(parts) {
		return Params{}, false
	}
	return params, true
}
