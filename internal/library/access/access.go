// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package access decides whether a reader may open a chapter.
//
// The decision is a pure function of the chapter and the reader's entitlement
// for its comic; callers load both and never consult the balance.
package access

import (
	"github.com/taibuivan/comicpass/internal/core/chapter"
	"github.com/taibuivan/comicpass/internal/library/entitlement"
)

// CanRead reports whether a reader holding ent may read ch.
//
// A free chapter is open to everyone, anonymous readers included. A paid
// chapter needs either a whole-comic purchase or an individual unlock. A nil
// chapter is never readable; a nil entitlement owns nothing.
func CanRead(ch *chapter.Chapter, ent *entitlement.Entitlement) bool {
	if ch == nil {
		return false
	}
	if ch.IsFree {
		return true
	}
	if ent == nil || ent.ComicID != "" && ent.ComicID != ch.ComicID {
		return false
	}
	return ent.OwnsComic() || ent.HasChapter(ch.ID)
}
