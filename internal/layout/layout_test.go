package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseBareWindowName(t *testing.T) {
	n, err := Parse("Source")
	require.NoError(t, err)
	require.Equal(t, Leaf, n.Kind)
	require.Equal(t, "Source", n.Name)
}

func TestParseSplitPane(t *testing.T) {
	n, err := Parse("h(70,Source,Console)")
	require.NoError(t, err)
	require.Equal(t, Horizontal, n.Kind)
	require.Equal(t, 70, n.Percent)
	require.Len(t, n.Children, 2)
	require.Equal(t, "Source", n.Children[0].Name)
	require.Equal(t, "Console", n.Children[1].Name)
}

func TestParseNestedLayout(t *testing.T) {
	s := "v(75,h(80,Source,v(50,t(Breakpoints,Commands,Struct),t(Stack,Files,Thread))),h(65,Console,t(Watch,Registers,Data)))"
	n, err := Parse(s)
	require.NoError(t, err)
	require.Equal(t, Vertical, n.Kind)
	require.Equal(t, 75, n.Percent)
	require.Equal(t, Horizontal, n.Children[0].Kind)
	tabs := n.Children[0].Children[1].Children[0]
	require.Equal(t, Tabs, tabs.Kind)
	require.Equal(t, []string{"Breakpoints", "Commands", "Struct"}, tabs.Tabs)
}

func TestParseRejectsUnknownWindow(t *testing.T) {
	_, err := Parse("Nonexistent")
	require.Error(t, err)
}

func TestParseRejectsSplitPaneWithWrongChildCount(t *testing.T) {
	_, err := Parse("h(50,Source)")
	require.Error(t, err)
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := Parse("Source,Console")
	require.Error(t, err)
}
