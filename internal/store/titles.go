package store

const DefaultTitle = "FairSonority"

func FormatDocumentTitle(title string) string {
	if title == "" {
		return DefaultTitle
	}
	return title + " - " + DefaultTitle
}

func FormatAppBarTitle(title string) string {
	if title == "" {
		return DefaultTitle
	}
	return DefaultTitle + ": " + title
}

func reduceTitles(s TitleState, a Action) TitleState {
	if t, ok := a.(SetTitle); ok {
		return TitleState{
			DocumentTitle: FormatDocumentTitle(t.Title),
			AppTitle:      FormatAppBarTitle(t.Title),
		}
	}
	return s
}

func SelectAppTitle(s RootState) string {
	return s.Titles.AppTitle
}

func SelectDocumentTitle(s RootState) string {
	return s.Titles.DocumentTitle
}
