package store

import (
	"slices"

	"room-client/internal/models"
)

type BoothState struct {
	Rev       uint64
	HistoryID string
	DJID      string
	Media     *models.Media
	PlayedAt  int64
}

func reduceBooth(s BoothState, in Intent) BoothState {
	var adv *models.Advance
	switch in.Kind {
	case KindAdvance:
		if p, ok := in.Payload.(models.Advance); ok {
			adv = &p
		}
	case KindLoadNow:
		if p, ok := in.Payload.(models.NowResponse); ok {
			adv = p.Booth
			if adv == nil {
				adv = &models.Advance{}
			}
		}
	}
	if adv == nil {
		return s
	}
	return BoothState{
		Rev:       s.Rev + 1,
		HistoryID: adv.HistoryID,
		DJID:      adv.DJID,
		Media:     adv.Media,
		PlayedAt:  adv.PlayedAt,
	}
}

type VotesState struct {
	Rev       uint64
	Upvotes   []string
	Downvotes []string
	Favorites []string
}

func reduceVotes(s VotesState, in Intent) VotesState {
	switch in.Kind {
	case KindAdvance:
		return VotesState{Rev: s.Rev + 1}
	case KindLoadVotes:
		p, ok := in.Payload.(LoadVotesPayload)
		if !ok {
			return s
		}
		return VotesState{
			Rev:       s.Rev + 1,
			Upvotes:   slices.Clone(p.Upvotes),
			Downvotes: slices.Clone(p.Downvotes),
			Favorites: slices.Clone(p.Favorites),
		}
	case KindUpvote:
		p, ok := in.Payload.(VotePayload)
		if !ok || slices.Contains(s.Upvotes, p.UserID) {
			return s
		}
		s.Upvotes = append(slices.Clip(s.Upvotes), p.UserID)
		s.Downvotes = without(s.Downvotes, p.UserID)
		s.Rev++
	case KindDownvote:
		p, ok := in.Payload.(VotePayload)
		if !ok || slices.Contains(s.Downvotes, p.UserID) {
			return s
		}
		s.Upvotes = without(s.Upvotes, p.UserID)
		s.Downvotes = append(slices.Clip(s.Downvotes), p.UserID)
		s.Rev++
	case KindFavorite:
		p, ok := in.Payload.(VotePayload)
		if !ok || slices.Contains(s.Favorites, p.UserID) {
			return s
		}
		s.Favorites = append(slices.Clip(s.Favorites), p.UserID)
		s.Rev++
	}
	return s
}

func without(ids []string, id string) []string {
	if !slices.Contains(ids, id) {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
