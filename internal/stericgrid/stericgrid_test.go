// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stericgrid

import "testing"

func TestPointPointContactDetected(t *testing.T) {
	g := NewGrid([]float64{-5, -5}, []float64{5, 5}, []bool{false, false}, 1)
	g.Clear()
	g.Add(Object{Kind: KindPoint, P: []float64{0, 0}, Radius: 0.5})
	g.Add(Object{Kind: KindPoint, P: []float64{0.6, 0}, Radius: 0.5})
	contacts := g.FindContacts(0)
	if len(contacts) != 1 {
		t.Fatalf("expected 1 contact (radii sum 1.0 > distance 0.6), got %d", len(contacts))
	}
}

func TestPointPointNoContactWhenFar(t *testing.T) {
	g := NewGrid([]float64{-5, -5}, []float64{5, 5}, []bool{false, false}, 1)
	g.Clear()
	g.Add(Object{Kind: KindPoint, P: []float64{0, 0}, Radius: 0.1})
	g.Add(Object{Kind: KindPoint, P: []float64{3, 0}, Radius: 0.1})
	if c := g.FindContacts(0); len(c) != 0 {
		t.Fatalf("expected no contacts, got %d", len(c))
	}
}

func TestPointSegmentContact(t *testing.T) {
	g := NewGrid([]float64{-5, -5}, []float64{5, 5}, []bool{false, false}, 1)
	g.Clear()
	g.Add(Object{Kind: KindPoint, P: []float64{1, 0.2}, Radius: 0.3})
	g.Add(Object{Kind: KindSegment, P: []float64{0, 0}, Q: []float64{2, 0}, Radius: 0.1, Range: 1})
	contacts := g.FindContacts(0)
	if len(contacts) != 1 {
		t.Fatalf("expected 1 point-segment contact, got %d", len(contacts))
	}
}

func TestSegmentSegmentContact(t *testing.T) {
	g := NewGrid([]float64{-5, -5}, []float64{5, 5}, []bool{false, false}, 1)
	g.Clear()
	g.Add(Object{Kind: KindSegment, P: []float64{-1, 0}, Q: []float64{1, 0}, Radius: 0.2, Range: 1})
	g.Add(Object{Kind: KindSegment, P: []float64{0, -1}, Q: []float64{0, 1}, Radius: 0.2, Range: 1})
	contacts := g.FindContacts(0)
	if len(contacts) != 1 {
		t.Fatalf("expected 1 crossing segment-segment contact, got %d", len(contacts))
	}
}

func TestNoDuplicateContactsAcrossCells(t *testing.T) {
	g := NewGrid([]float64{-5, -5}, []float64{5, 5}, []bool{false, false}, 0.5)
	g.Clear()
	g.Add(Object{Kind: KindPoint, P: []float64{0, 0}, Radius: 1})
	g.Add(Object{Kind: KindPoint, P: []float64{0.5, 0}, Radius: 1})
	contacts := g.FindContacts(0)
	if len(contacts) != 1 {
		t.Fatalf("expected exactly one contact reported once, got %d", len(contacts))
	}
}
