package report_test

import (
	"testing"

	"mediacat/internal/report"
)

func TestChannelDeliversInOrder(t *testing.T) {
	ch := report.NewChannel(4)
	ch.Report(report.Event{Phase: "reconcile", Current: 1, Success: true})
	ch.Report(report.Event{Phase: "reconcile", Current: 2, Success: true})
	ch.Close()

	var got []int
	for event := range ch.Events() {
		got = append(got, event.Current)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestChannelDropsWhenFull(t *testing.T) {
	ch := report.NewChannel(2)
	for i := 1; i <= 5; i++ {
		ch.Report(report.Event{Current: i})
	}
	ch.Close()

	count := 0
	for range ch.Events() {
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 buffered events, got %d", count)
	}
}

func TestMultiFansOut(t *testing.T) {
	a := report.NewChannel(1)
	b := report.NewChannel(1)
	report.Multi{a, b}.Report(report.Event{Current: 7})
	a.Close()
	b.Close()

	if event := <-a.Events(); event.Current != 7 {
		t.Fatalf("reporter a got %d", event.Current)
	}
	if event := <-b.Events(); event.Current != 7 {
		t.Fatalf("reporter b got %d", event.Current)
	}
}
