package gui

import (
	adw "github.com/diamondburned/gotk4-adwaita/pkg/adw"
	gtk "github.com/diamondburned/gotk4/pkg/gtk/v4"
)

func newPageBox() (*gtk.ScrolledWindow, *gtk.Box) {
	scrolled := gtk.NewScrolledWindow()
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	scrolled.SetVExpand(true)

	contentBox := gtk.NewBox(gtk.OrientationVertical, 24)
	contentBox.SetMarginTop(24)
	contentBox.SetMarginBottom(24)
	contentBox.SetMarginStart(24)
	contentBox.SetMarginEnd(24)

	scrolled.SetChild(contentBox)
	return scrolled, contentBox
}

func clearListBox(listBox *gtk.ListBox) {
	for listBox.FirstChild() != nil {
		listBox.Remove(listBox.FirstChild())
	}
}

func clearBox(box *gtk.Box) {
	for box.FirstChild() != nil {
		box.Remove(box.FirstChild())
	}
}

func errorPage(title string, description string) *gtk.ScrolledWindow {
	scrolled, contentBox := newPageBox()
	contentBox.Append(messageBox("⚠️", title, description))
	return scrolled
}

func messageBox(icon string, title string, description string) *gtk.Box {
	box := gtk.NewBox(gtk.OrientationVertical, 12)
	box.SetHAlign(gtk.AlignCenter)
	box.SetVAlign(gtk.AlignCenter)
	box.SetMarginTop(48)
	box.SetMarginBottom(48)

	if icon != "" {
		iconLabel := gtk.NewLabel(icon)
		iconLabel.AddCSSClass("title-1")
		box.Append(iconLabel)
	}

	titleLabel := gtk.NewLabel(title)
	titleLabel.AddCSSClass("title-2")
	box.Append(titleLabel)

	if description != "" {
		descriptionLabel := gtk.NewLabel(description)
		descriptionLabel.AddCSSClass("dim-label")
		descriptionLabel.SetWrap(true)
		descriptionLabel.SetJustify(gtk.JustifyCenter)
		box.Append(descriptionLabel)
	}

	return box
}

// valueRow is a plain title with a right aligned value.
func valueRow(title string, value string) *adw.ActionRow {
	row := adw.NewActionRow()
	row.SetUseMarkup(false)
	row.SetTitle(title)

	valueLabel := gtk.NewLabel(value)
	valueLabel.AddCSSClass("numeric")
	valueLabel.SetVAlign(gtk.AlignCenter)
	row.AddSuffix(valueLabel)

	return row
}

func sectionTitle(text string) *gtk.Label {
	label := gtk.NewLabel(text)
	label.AddCSSClass("title-1")
	label.SetHAlign(gtk.AlignStart)
	label.SetXAlign(0)
	return label
}
