// Package filtering decides which channels are forwarded to a render target.
//
// Each candidate channel name is decided independently against a
// SelectionConfig made of an allow-list ("only"), a deny-list ("except"), the
// set of channel names the target declares natively, and the FilterNative
// toggle. Patterns come from the pattern package and are resolved once per
// selection before any name is tested.
//
// # Selection Logic
//
// For every name:
//
//  1. If the name is native and FilterNative is false -> include (native channel)
//  2. If allow patterns are specified and the name matches any -> include
//  3. If allow patterns are specified and the name matches none -> exclude
//  4. If only deny patterns are specified and the name matches any -> exclude
//  5. Otherwise -> include (default behavior)
//
// A non-empty allow-list makes the deny-list dead: "except" is only consulted
// when "only" is empty. Supplying both is not an error.
//
// # Usage Example
//
//	cfg := filtering.SelectionConfig{
//		Allow:       pattern.MustParseSet("default", "prepend*"),
//		NativeNames: filtering.NameSet("footer"),
//	}
//	selected := filtering.Select([]string{"default", "prepend.one", "append", "footer"}, cfg)
//	// selected: default, prepend.one, footer
//
// # Detailed Logging
//
// The Service logs every decision at debug level with the reason it was made,
// which is the quickest way to understand why a channel was or was not
// forwarded.
package filtering
