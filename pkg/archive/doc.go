// Package archive turns a list of posts into an on-disk archive.
//
// For each post, in input order, the Writer resolves the target directory,
// creates it, writes the front matter document in the background and queues
// one download per image URL. Downloads follow a single global schedule: the
// Nth image of the whole collection starts no earlier than N times the
// stagger increment after WriteFiles was called, on a pool bounded by
// download.concurrent_downloads.
//
// Errors never stop the run. Each one is logged where it happens and
// recorded in the report returned by Run.Wait:
//
//	w, err := archive.NewWriter(cfg)
//	if err != nil {
//	    return err
//	}
//	run := w.WriteFiles(ctx, posts)
//	rep := run.Wait()
//	fmt.Println(rep.Summary().ImagesSaved)
package archive
