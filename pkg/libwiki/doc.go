// Package libwiki is a client of the Blue Wiki HTTP API.
//
// Create client
//
//	client, err := libwiki.NewDefaultClient("https://wiki.nas.lan")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Authenticate
//
//	err = client.Login("george.abitbol@nas.lan", "12345678")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Browse the tree
//
//	listing, err := client.Tree("/guides")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, folder := range listing.Folders {
//		fmt.Println(folder.Path + "/")
//	}
//	for _, page := range listing.Pages {
//		fmt.Println(page.Path, page.Title)
//	}
//
// Read an article
//
//	article, err := client.Article("/guides/install", false)
//	if libwiki.IsNotFound(err) {
//		fmt.Println("No such page")
//		return
//	}
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(article.Content)
package libwiki
