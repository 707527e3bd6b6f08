// Package storage manages the on-disk media tree of an archived page.
//
// Every page gets one directory per media kind, and every post one
// directory per kind it carries media of:
//
//	cache/<page>/photos/<postID>/0
//	cache/<page>/photos/<postID>/1
//	cache/<page>/audios/<postID>/0
//	cache/<page>/videos/<postID>/0
//	cache/<page>/wikis/<postID>/0
//
// File names are ordinals: the position of the item in the post's list of
// that kind. Writes go to "<ordinal>.tmp" first and are renamed into place,
// so an interrupted run never leaves a truncated ordinal file, and a
// rewrite of the same item is an idempotent overwrite.
//
// Usage:
//
//	media, err := storage.NewManager("cache/apiclub")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	done, _ := media.IsComplete(models.KindPhoto, postID, 3)
//	if !done {
//	    err = media.Save(body, models.KindPhoto, postID, 0)
//	}
package storage
