package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tjfontaine/secretagent/pkg/secretagent"
)

type demoStubs struct {
	translate        *secretagent.Stub
	analyzeSentence  *secretagent.Stub
	sportFor         *secretagent.Stub
	consistentSports *secretagent.Stub
}

func (s *demoStubs) all() []*secretagent.Stub {
	return []*secretagent.Stub{s.translate, s.analyzeSentence, s.sportFor, s.consistentSports}
}

func declareStubs(a *secretagent.Agent) (*demoStubs, error) {
	var errs []error
	build := func(d *secretagent.Declaration) *secretagent.Stub {
		s, err := d.Build()
		errs = append(errs, err)
		return s
	}

	s := &demoStubs{
		translate: build(a.Declare("translate").
			Param("english_sentence", "str").
			Returns(secretagent.KindText).
			Doc("Translate a sentence in English to French.")),

		analyzeSentence: build(a.Declare("analyze_sentence").
			Param("sentence", "str").
			Returns(secretagent.KindTuple, "(str, str, str)").
			Doc(`Extract the name of a player, an action, and an optional event.

The action should be as descriptive as possible.  The event will be
an empty string if no event is mentioned in the sentence.

Examples:
>>> analyze_sentence("Bam Adebayo scored a reverse layup in the Western Conference Finals.")
('Bam Adebayo', 'scored a reverse layup', 'in the Western Conference Finals.')
>>> analyze_sentence('Santi Cazorla scored a touchdown.')
('Santi Cazorla', 'scored a touchdown.', '')`)),

		sportFor: build(a.Declare("sport_for").
			Param("x", "str").
			Returns(secretagent.KindText).
			Doc(`Return the name of the sport associated with a player, action, or event.

Examples:
>>> sport_for('Bam Adebayo')
'basketball'
>>> sport_for('scored a reverse layup')
'basketball'
>>> sport_for('in the Western Conference Finals.')
'basketball'
>>> sport_for('Santi Cazorla')
'soccer'
>>> sport_for('scored a touchdown.')
'American football and rugby'`)),

		consistentSports: build(a.Declare("consistent_sports").
			Param("sport1", "str").
			Param("sport2", "str").
			Returns(secretagent.KindBoolean).
			Doc(`Compare two descriptions of sports, and determine if they are consistent.

Descriptions are consistent if they are the same, or if one is more
general than the other.`)),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return s, nil
}

// sportsUnderstanding decides whether a sentence about sports is plausible:
// the player, the action, and the event (if any) must belong to consistent
// sports.
func sportsUnderstanding(ctx context.Context, s *demoStubs, out io.Writer, sentence string) (bool, error) {
	parts, err := secretagent.Call[secretagent.Tuple](ctx, s.analyzeSentence, sentence)
	if err != nil {
		return false, err
	}
	if len(parts) != 3 {
		return false, fmt.Errorf("analyze_sentence returned %d parts, want 3", len(parts))
	}
	player, action, event := fmt.Sprint(parts[0]), fmt.Sprint(parts[1]), fmt.Sprint(parts[2])

	playerSport, err := secretagent.Call[string](ctx, s.sportFor, player)
	if err != nil {
		return false, err
	}
	actionSport, err := secretagent.Call[string](ctx, s.sportFor, action)
	if err != nil {
		return false, err
	}
	result, err := secretagent.Call[bool](ctx, s.consistentSports, playerSport, actionSport)
	if err != nil {
		return false, err
	}

	if event != "" {
		eventSport, err := secretagent.Call[string](ctx, s.sportFor, event)
		if err != nil {
			return false, err
		}
		if result {
			result, err = secretagent.Call[bool](ctx, s.consistentSports, playerSport, eventSport)
			if err != nil {
				return false, err
			}
		}
	}

	answer := "no"
	if result {
		answer = "yes"
	}
	fmt.Fprintf(out, "Final answer: %s\n", answer)
	return result, nil
}
