// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package access_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/comicpass/internal/core/chapter"
	"github.com/taibuivan/comicpass/internal/library/access"
	"github.com/taibuivan/comicpass/internal/library/entitlement"
)

func TestCanRead(t *testing.T) {
	purchasedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	free := &chapter.Chapter{ID: "ch-1", ComicID: "comic-1", Number: 1, IsFree: true}
	paid := &chapter.Chapter{ID: "ch-4", ComicID: "comic-1", Number: 4}

	owner := &entitlement.Entitlement{ComicID: "comic-1", PurchasedAt: &purchasedAt}
	unlocked := &entitlement.Entitlement{ComicID: "comic-1", UnlockedChapterIDs: []string{"ch-4"}}
	otherUnlock := &entitlement.Entitlement{ComicID: "comic-1", UnlockedChapterIDs: []string{"ch-5"}}
	favoriteOnly := &entitlement.Entitlement{ComicID: "comic-1", IsFavorited: true}
	otherComic := &entitlement.Entitlement{ComicID: "comic-2", PurchasedAt: &purchasedAt}

	tests := []struct {
		name    string
		chapter *chapter.Chapter
		ent     *entitlement.Entitlement
		want    bool
	}{
		{"nil chapter", nil, owner, false},
		{"free chapter anonymous", free, nil, true},
		{"free chapter with entitlement", free, favoriteOnly, true},
		{"paid chapter anonymous", paid, nil, false},
		{"paid chapter comic owner", paid, owner, true},
		{"paid chapter unlocked individually", paid, unlocked, true},
		{"paid chapter other chapter unlocked", paid, otherUnlock, false},
		{"paid chapter favorite without purchase", paid, favoriteOnly, false},
		{"paid chapter entitlement for another comic", paid, otherComic, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, access.CanRead(tc.chapter, tc.ent))
		})
	}
}
