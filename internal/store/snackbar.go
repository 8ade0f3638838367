package store

func reduceSnackbar(s SnackbarState, a Action) SnackbarState {
	switch a := a.(type) {
	case ShowSnackbar:
		sb := a.Snackbar
		return &sb
	case HideSnackbar:
		return nil
	}
	return s
}

func SelectSnackbar(s RootState) SnackbarState {
	return s.Snackbar
}
